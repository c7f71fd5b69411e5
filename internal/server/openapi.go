package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"quizme-gateway/internal/models"
)

type questionsQuery struct {
	Difficulty string `query:"difficulty" description:"easy, medium, hard, or a label containing 'anything' for no filter"`
	Category   string `query:"category" description:"Category display name; unknown names apply no filter"`
	Amount     string `query:"amount" description:"Positive number of questions, defaults to 10"`
}

type healthResponse map[string]struct {
	Status string `json:"status"`
}

type liveFeedMessage struct {
	Type string                `json:"type"`
	Data models.AnalyticsEvent `json:"data"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "QuizMe Gateway API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Quiz gateway over the Open Trivia Database with request analytics.")

	// GET /getQuestions
	getQuestions, _ := r.NewOperationContext(http.MethodGet, "/getQuestions")
	getQuestions.SetSummary("Fetch questions")
	getQuestions.SetDescription("Translates the selection into an upstream query and returns normalized questions.")
	getQuestions.AddReqStructure(questionsQuery{})
	getQuestions.AddRespStructure(models.QuizResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuestions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getQuestions.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getQuestions)

	// GET /getCategories
	getCategories, _ := r.NewOperationContext(http.MethodGet, "/getCategories")
	getCategories.SetSummary("List categories")
	getCategories.SetDescription("Returns the sorted category names including the no-filter label.")
	getCategories.AddRespStructure(models.CategoriesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCategories)

	// GET /openDashboard
	openDashboard, _ := r.NewOperationContext(http.MethodGet, "/openDashboard")
	openDashboard.SetSummary("Analytics dashboard")
	openDashboard.SetDescription("Returns every recorded event plus the three aggregate views.")
	openDashboard.AddRespStructure(models.Dashboard{}, openapi.WithHTTPStatus(http.StatusOK))
	openDashboard.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusInternalServerError),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(openDashboard)

	// GET /ws/dashboard
	liveFeed, _ := r.NewOperationContext(http.MethodGet, "/ws/dashboard")
	liveFeed.SetSummary("Live analytics feed")
	liveFeed.SetDescription("Upgrades to a WebSocket that receives each recorded event.")
	liveFeed.AddRespStructure(liveFeedMessage{}, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
	_ = r.AddOperation(liveFeed)

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(healthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(healthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
