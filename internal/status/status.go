// Package status serves a small read-only HTTP surface describing the
// running bot.
package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keshon/sentinel/internal/command"
	"github.com/keshon/sentinel/internal/cooldown"
	"github.com/keshon/sentinel/internal/history"
	"github.com/keshon/sentinel/internal/permission"
	"github.com/keshon/sentinel/pkg/jobmgr"
	"github.com/rs/zerolog"
)

type Deps struct {
	Version   string
	Started   time.Time
	Registry  *command.Registry
	Cooldowns *cooldown.Store
	History   *history.Store
	Jobs      *jobmgr.Manager
	Now       func() time.Time
}

type CommandInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Usage        string   `json:"usage"`
	Category     string   `json:"category"`
	Aliases      []string `json:"aliases,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Cooldown     float64  `json:"cooldown_seconds,omitempty"`
}

type Stats struct {
	Version         string         `json:"version"`
	UptimeSeconds   int64          `json:"uptime_seconds"`
	Commands        int            `json:"commands"`
	CooldownEntries int            `json:"cooldown_entries"`
	HistoryGuilds   int            `json:"history_guilds"`
	Jobs            []jobmgr.State `json:"jobs,omitempty"`
}

// Handler builds the gin engine.
func Handler(d Deps, log zerolog.Logger) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/commands", func(c *gin.Context) {
		specs := d.Registry.All()
		out := make([]CommandInfo, 0, len(specs))
		for _, s := range specs {
			info := CommandInfo{
				Name:        s.Name,
				Description: s.Description,
				Usage:       s.Usage,
				Category:    s.Category,
				Aliases:     s.Aliases,
				Cooldown:    s.Cooldown.Seconds(),
			}
			for _, cp := range s.Capabilities {
				info.Capabilities = append(info.Capabilities, permission.CapabilityName(cp))
			}
			out = append(out, info)
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/stats", func(c *gin.Context) {
		s := Stats{
			Version:       d.Version,
			UptimeSeconds: int64(d.Now().Sub(d.Started).Seconds()),
			Commands:      d.Registry.Len(),
		}
		if d.Cooldowns != nil {
			s.CooldownEntries = d.Cooldowns.Len()
		}
		if d.History != nil {
			s.HistoryGuilds = d.History.Guilds()
		}
		if d.Jobs != nil {
			s.Jobs = d.Jobs.States()
		}
		c.JSON(http.StatusOK, s)
	})

	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("status request")
	}
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("status server shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("status server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
