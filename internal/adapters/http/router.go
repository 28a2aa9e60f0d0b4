package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dkeye/Huddle/internal/adapters/ai"
	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -source=router.go -destination=mock_ai_test.go -package=http AIService

// AIService is the speech-to-text and summarization collaborator.
type AIService interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

const clientTokenKey = "client_token"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a per-browser token in the session cookie.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

type Deps struct {
	Dispatcher *app.Dispatcher
	Rooms      *core.RoomRegistry
	Telemetry  *core.TelemetryStore
	Transcript *core.TranscriptLog
	AI         AIService
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": domain.UnixTime(time.Now()),
		})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	ctrl := signal.NewSignalWSController(deps.Dispatcher, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
	})
	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": deps.Rooms.List()})
	})
	api.GET("/rooms/:room", roomInfoHandler(deps))

	ice := cfg.WebRTCICEServers()
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": ice})
	})

	api.POST("/transcribe", transcribeHandler(deps.AI))
	api.POST("/summary", summaryHandler(deps.AI))

	return r
}

type roomDetail struct {
	domain.RoomInfo
	TelemetrySamples int                `json:"telemetry_samples"`
	Tier             domain.QualityTier `json:"tier,omitempty"`
	Recommendation   string             `json:"recommendation,omitempty"`
	TranscriptCount  int                `json:"transcript_entries"`
}

func roomInfoHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := domain.RoomKey(c.Param("room"))
		info, known := deps.Rooms.Get(key)
		samples := deps.Telemetry.History(key)
		entries := deps.Transcript.Len(key)
		if !known && len(samples) == 0 && entries == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if !known {
			info = domain.RoomInfo{Key: key}
		}

		out := roomDetail{RoomInfo: info, TelemetrySamples: len(samples), TranscriptCount: entries}
		if latest, ok := deps.Telemetry.Latest(key); ok {
			out.Tier, out.Recommendation = core.Evaluate(latest)
		}
		c.JSON(http.StatusOK, out)
	}
}

func aiStatus(err error) int {
	if errors.Is(err, ai.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func transcribeHandler(svc AIService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ai.ErrNotConfigured.Error()})
			return
		}
		fh, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio file"})
			return
		}
		defer f.Close()

		text, err := svc.Transcribe(c.Request.Context(), fh.Filename, f)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("transcribe")
			c.JSON(aiStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transcript": text})
	}
}

func summaryHandler(svc AIService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ai.ErrNotConfigured.Error()})
			return
		}
		var req struct {
			Transcript string `json:"transcript"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Transcript == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No transcript provided"})
			return
		}

		summary, err := svc.Summarize(c.Request.Context(), req.Transcript)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("summary")
			c.JSON(aiStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}
