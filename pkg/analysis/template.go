// Package analysis composes the templated commentary attached to each record.
// There is no model behind it: the output is a deterministic function of the
// record content, its storage type, and two profile attributes.
package analysis

import (
	"strings"

	"github.com/yanchenliu/moodlog-backend/pkg/enums"
)

const (
	// DefaultMBTI is used when the profile has no MBTI code yet.
	DefaultMBTI = enums.MBTIINFP
	// DefaultOccupation is used when the profile has no occupation yet.
	DefaultOccupation = "用户"
)

// DefaultKeywords tag every templated analysis.
var DefaultKeywords = []string{"记录", "生活", "思考"}

// DefaultSentiment labels every templated analysis.
const DefaultSentiment = enums.SentimentPositive

// Input carries everything the template needs.
type Input struct {
	Content    string
	Type       enums.RecordType
	MBTI       enums.MBTIType
	Occupation string
}

// Compose builds the analysis text. Audio and text records get a reflective
// multi-sentence template conditioned on simple keyword checks; image records
// get a single observation sentence.
func Compose(in Input) string {
	mbti := in.MBTI
	if mbti == "" {
		mbti = DefaultMBTI
	}
	occupation := strings.TrimSpace(in.Occupation)
	if occupation == "" {
		occupation = DefaultOccupation
	}

	if in.Type == enums.RecordTypeImage {
		return "这张图片记录了你生活中的一个瞬间。作为" + mbti.String() + "类型的" + occupation +
			"，你善于捕捉生活中的美好细节，这体现了你对生活的热爱和观察力。"
	}

	var b strings.Builder
	b.WriteString("基于你的")
	b.WriteString(mbti.String())
	b.WriteString("性格类型和")
	b.WriteString(occupation)
	b.WriteString("职业背景，这段记录体现了你的思考模式。")

	if strings.Contains(in.Content, "工作") || strings.Contains(in.Content, "项目") {
		b.WriteString("你在工作中展现出了专业的态度和积极的心态。")
	}
	if strings.Contains(in.Content, "学习") || strings.Contains(in.Content, "思考") {
		b.WriteString("你对学习和自我提升的重视体现了持续成长的心态。")
	}

	b.WriteString("作为")
	b.WriteString(mbti.String())
	b.WriteString("类型的人，你的这种表达方式很符合你的性格特征。")
	return b.String()
}
