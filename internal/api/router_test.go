package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"

	"github.com/stitts-dev/fanta-optimizer/internal/api/handlers"
	"github.com/stitts-dev/fanta-optimizer/internal/models"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/internal/services"
	"github.com/stitts-dev/fanta-optimizer/pkg/config"
	"github.com/stitts-dev/fanta-optimizer/pkg/database"
	"github.com/stitts-dev/fanta-optimizer/pkg/utils"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *utils.AppError `json:"error"`
	Meta      *utils.Meta     `json:"meta"`
	RequestID string          `json:"requestId"`
}

type RouterTestSuite struct {
	suite.Suite
	db     *database.DB
	redis  *miniredis.Miniredis
	client *redis.Client
	router *gin.Engine
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(sqlite.Open(":memory:"), database.PoolOptions{MaxOpenConns: 1, LogLevel: logger.Silent})
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(s.db.AutoMigrate(&models.BuildRecord{}))

	s.redis = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.redis.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		CorsOrigins:     []string{"*"},
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
		RequestMaxBytes: 1 << 20,
	}
	s.router = NewRouter(Dependencies{
		Config:    cfg,
		DB:        s.db,
		Cache:     services.NewCacheService(s.client, time.Hour, 5, time.Second, log),
		History:   services.NewHistoryService(s.db, log),
		Optimizer: optimizer.New(optimizer.DefaultOptions(), log),
		Logger:    log,
	})
}

func (s *RouterTestSuite) TearDownSuite() {
	s.client.Close()
}

func (s *RouterTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM build_records")
	s.redis.FlushAll()
}

func (s *RouterTestSuite) request() gin.H {
	return gin.H{
		"players": []gin.H{
			{"id": "p1", "name": "Sommer", "team": "Inter", "role": "P", "cost": 10, "rating": 70, "starter": true},
			{"id": "p2", "name": "Carnesecchi", "team": "Atalanta", "role": "P", "cost": 5, "rating": 50, "starter": false},
			{"id": "d1", "name": "Bastoni", "team": "Inter", "role": "D", "cost": 15, "rating": 75, "starter": true},
			{"id": "d2", "name": "Dimarco", "team": "Inter", "role": "D", "cost": 8, "rating": 60, "starter": false},
			{"id": "c1", "name": "Barella", "team": "Inter", "role": "C", "cost": 20, "rating": 80, "starter": true},
			{"id": "c2", "name": "Koopmeiners", "team": "Juventus", "role": "C", "cost": 10, "rating": 65, "starter": false},
			{"id": "a1", "name": "Lautaro", "team": "Inter", "role": "A", "cost": 25, "rating": 85, "starter": true},
			{"id": "a2", "name": "Retegui", "team": "Atalanta", "role": "A", "cost": 12, "rating": 70, "starter": false},
		},
		"config": gin.H{
			"totalBudget":     100,
			"rolePercentages": gin.H{"P": 10, "D": 20, "C": 30, "A": 40},
			"roleCounts":      gin.H{"P": 1, "D": 1, "C": 1, "A": 1},
			"minStarterPct":   0,
		},
	}
}

func (s *RouterTestSuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *RouterTestSuite) TestOptimize_Success() {
	w, env := s.do(http.MethodPost, "/api/v1/optimize", s.request())
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(env.Success)

	var resp handlers.OptimizeResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.NotEmpty(resp.BuildID)
	s.False(resp.Cached)
	s.Equal(70, resp.Result.TotalCost)
	s.InDelta(310, resp.Result.TotalScore, 1e-9)
	s.Equal("a1", resp.Result.ByRole[optimizer.RoleForward].Chosen[0].ID)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
	s.Equal(w.Header().Get("X-Request-ID"), env.RequestID)

	var count int64
	s.db.Model(&models.BuildRecord{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *RouterTestSuite) TestOptimize_ServesRepeatFromCache() {
	_, first := s.do(http.MethodPost, "/api/v1/optimize", s.request())
	_, second := s.do(http.MethodPost, "/api/v1/optimize", s.request())

	var a, b handlers.OptimizeResponse
	s.Require().NoError(json.Unmarshal(first.Data, &a))
	s.Require().NoError(json.Unmarshal(second.Data, &b))
	s.False(a.Cached)
	s.True(b.Cached)
	s.Equal(a.BuildID, b.BuildID)
	s.Equal(a.Result.TotalScore, b.Result.TotalScore)

	var count int64
	s.db.Model(&models.BuildRecord{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *RouterTestSuite) TestOptimize_PercentagesMustSumTo100() {
	body := s.request()
	body["config"].(gin.H)["rolePercentages"] = gin.H{"P": 10, "D": 20, "C": 30, "A": 39}

	w, env := s.do(http.MethodPost, "/api/v1/optimize", body)
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(env.Success)
	s.Equal(utils.ErrCodeValidation, env.Error.Code)
}

func (s *RouterTestSuite) TestOptimize_SchemaViolation() {
	body := s.request()
	body["players"] = []gin.H{}

	w, env := s.do(http.MethodPost, "/api/v1/optimize", body)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(utils.ErrCodeValidation, env.Error.Code)
	s.NotEmpty(env.Error.Details)
}

func (s *RouterTestSuite) TestOptimize_InvalidConfig() {
	body := s.request()
	body["config"].(gin.H)["constraints"] = gin.H{"locks": []string{"ghost"}}

	w, env := s.do(http.MethodPost, "/api/v1/optimize", body)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(utils.ErrCodeInvalidConfig, env.Error.Code)
}

func (s *RouterTestSuite) TestOptimize_BudgetExceeded() {
	body := s.request()
	body["acquired"] = []gin.H{{"id": "p1", "price": 200}}

	w, env := s.do(http.MethodPost, "/api/v1/optimize", body)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal(utils.ErrCodeBudgetExceeded, env.Error.Code)
}

func (s *RouterTestSuite) TestValidate() {
	w, env := s.do(http.MethodPost, "/api/v1/optimize/validate", s.request())
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp handlers.ValidateResponse
	s.Require().NoError(json.Unmarshal(env.Data, &resp))
	s.True(resp.Valid)
	s.Equal(2, resp.Summary.Players[optimizer.RoleGoalkeeper])
	s.Equal(1, resp.Summary.Starters[optimizer.RoleDefender])
	s.Equal(40, resp.Summary.Budgets[optimizer.RoleForward])

	var count int64
	s.db.Model(&models.BuildRecord{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *RouterTestSuite) TestBuildHistory() {
	_, env := s.do(http.MethodPost, "/api/v1/optimize", s.request())
	var built handlers.OptimizeResponse
	s.Require().NoError(json.Unmarshal(env.Data, &built))

	w, list := s.do(http.MethodGet, "/api/v1/builds?limit=5", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var summaries []models.BuildSummary
	s.Require().NoError(json.Unmarshal(list.Data, &summaries))
	s.Require().Len(summaries, 1)
	s.Equal(built.BuildID, summaries[0].ID.String())
	s.Equal(int64(1), list.Meta.Total)

	w, one := s.do(http.MethodGet, "/api/v1/builds/"+built.BuildID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var record models.BuildRecord
	s.Require().NoError(json.Unmarshal(one.Data, &record))
	s.Equal(70, record.TotalCost)
	s.Contains(string(record.Result), `"byRole"`)

	w, _ = s.do(http.MethodGet, "/api/v1/builds/6f1c1f9e-0000-4000-8000-000000000000", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/builds/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/builds?limit=zero", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestProbes() {
	w, _ := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"redis":"ok"`)

	s.do(http.MethodPost, "/api/v1/optimize", s.request())
	w, _ = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "roster_optimizations_total")
}

func (s *RouterTestSuite) TestAPIDescription() {
	w, _ := s.do(http.MethodGet, "/", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/swagger.json", w.Header().Get("Location"))

	w, _ = s.do(http.MethodGet, "/swagger.json", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), "#/definitions/")

	var doc struct {
		OpenAPI    string                     `json:"openapi"`
		Paths      map[string]json.RawMessage `json:"paths"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &doc))
	s.Equal("3.0.3", doc.OpenAPI)
	for _, path := range []string{"/api/v1/optimize", "/api/v1/optimize/validate", "/api/v1/builds", "/api/v1/builds/{id}"} {
		s.Contains(doc.Paths, path)
	}
	s.Contains(doc.Components.Schemas, "OptimizeRequest")
	s.Contains(doc.Components.Schemas, "player")
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
