package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
)

type analysisBody struct {
	AnalysisResult string `json:"analysis_result" validate:"required"`
	Sentiment      string `json:"sentiment,omitempty" validate:"omitempty,oneof=positive negative neutral"`
}

type profileBody struct {
	MBTI       string `json:"mbti" validate:"omitempty,len=4"`
	Occupation string `json:"occupation" validate:"omitempty,max=120"`
}

func decodeErr(t *testing.T, err error) *pkgerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := err.(*pkgerrors.Error)
	if !ok {
		t.Fatalf("expected *pkgerrors.Error, got %T", err)
	}
	if appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", appErr.Code())
	}
	return appErr
}

func fieldMessages(t *testing.T, err *pkgerrors.Error) map[string]string {
	t.Helper()
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field message map, got %T", err.Details())
	}
	return details
}

func TestDecodeJSONBodyValid(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"analysis_result":"还不错","sentiment":"positive"}`))
	var body analysisBody
	if err := DecodeJSONBody(r, &body); err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if body.AnalysisResult != "还不错" {
		t.Fatalf("unexpected decoded body: %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"analysis_result":"x","bogus":1}`))
	var body analysisBody
	decodeErr(t, DecodeJSONBody(r, &body))
}

func TestDecodeJSONBodyRequiredMessage(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
	var body analysisBody
	messages := fieldMessages(t, decodeErr(t, DecodeJSONBody(r, &body)))
	if messages["analysis_result"] != "is required" {
		t.Fatalf("unexpected messages: %v", messages)
	}
}

func TestDecodeJSONBodyEnumMessageListsChoices(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"analysis_result":"x","sentiment":"thrilled"}`))
	var body analysisBody
	messages := fieldMessages(t, decodeErr(t, DecodeJSONBody(r, &body)))
	if messages["sentiment"] != "must be one of: positive, negative, neutral" {
		t.Fatalf("unexpected messages: %v", messages)
	}
}

func TestDecodeJSONBodyLengthMessages(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"mbti":"INTJX","occupation":"`+strings.Repeat("a", 121)+`"}`))
	var body profileBody
	messages := fieldMessages(t, decodeErr(t, DecodeJSONBody(r, &body)))
	if messages["mbti"] != "must be exactly 4 characters" {
		t.Fatalf("unexpected mbti message: %v", messages)
	}
	if messages["occupation"] != "must be at most 120 characters" {
		t.Fatalf("unexpected occupation message: %v", messages)
	}
}

func TestDecodeJSONBodyCapsBodySize(t *testing.T) {
	huge := `{"analysis_result":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(huge))
	var body analysisBody
	decodeErr(t, DecodeJSONBody(r, &body))
}
