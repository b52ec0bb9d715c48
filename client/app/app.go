// Package app assembles the application core: the HTTP backend, the session
// store, and the feature services the UI drives.
package app

import (
	"fmt"
	"net/http"

	"github.com/yanchenliu/moodlog-backend/client/capture"
	"github.com/yanchenliu/moodlog-backend/client/history"
	"github.com/yanchenliu/moodlog-backend/client/httpbackend"
	"github.com/yanchenliu/moodlog-backend/client/session"
	"github.com/yanchenliu/moodlog-backend/client/submit"
	"github.com/yanchenliu/moodlog-backend/pkg/analysis"
	"github.com/yanchenliu/moodlog-backend/pkg/config"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

// App owns one connected instance of every client service.
type App struct {
	Backend   *httpbackend.Backend
	Session   *session.Store
	Capture   *capture.Workflow
	Submitter *submit.Submitter
	History   *history.Service
}

// Params configures the app. HTTP and Tokens are optional; the backend
// supplies defaults.
type Params struct {
	BaseURL  string
	Analysis config.AnalysisConfig
	Logger   *logger.Logger
	HTTP     *http.Client
	Tokens   httpbackend.TokenStorage
}

// New wires the client stack. The analyzer takes its simulated latency from
// the analysis config so deployments can tune or zero it.
func New(params Params) (*App, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	backend, err := httpbackend.New(httpbackend.Params{
		BaseURL: params.BaseURL,
		HTTP:    params.HTTP,
		Tokens:  params.Tokens,
	})
	if err != nil {
		return nil, fmt.Errorf("build backend: %w", err)
	}

	store, err := session.NewStore(session.Params{Backend: backend, Logger: params.Logger})
	if err != nil {
		return nil, fmt.Errorf("build session store: %w", err)
	}

	submitter, err := submit.NewSubmitter(submit.Params{
		Backend:  backend,
		Analyzer: analysis.NewAnalyzer(params.Analysis.SimulatedLatency),
		Logger:   params.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build submitter: %w", err)
	}

	historyService, err := history.NewService(history.Params{Backend: backend, Logger: params.Logger})
	if err != nil {
		return nil, fmt.Errorf("build history service: %w", err)
	}

	return &App{
		Backend:   backend,
		Session:   store,
		Capture:   capture.NewWorkflow(),
		Submitter: submitter,
		History:   historyService,
	}, nil
}

// Close releases capture resources and stops the session store.
func (a *App) Close() {
	a.Capture.Reset()
	a.Session.Close()
}
