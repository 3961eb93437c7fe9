// Package flash queues one-shot user messages in the session cookie.
package flash

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

var levels = []Level{LevelInfo, LevelSuccess, LevelWarning, LevelError}

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func Add(c *gin.Context, level Level, text string) {
	session := sessions.Default(c)
	session.AddFlash(text, string(level))
	save(c, session)
}

func Info(c *gin.Context, text string)    { Add(c, LevelInfo, text) }
func Success(c *gin.Context, text string) { Add(c, LevelSuccess, text) }
func Warning(c *gin.Context, text string) { Add(c, LevelWarning, text) }
func Error(c *gin.Context, text string)   { Add(c, LevelError, text) }

// Pop returns every queued message and removes them from the session.
func Pop(c *gin.Context) []Message {
	session := sessions.Default(c)
	var out []Message
	for _, level := range levels {
		for _, v := range session.Flashes(string(level)) {
			if text, ok := v.(string); ok {
				out = append(out, Message{Level: level, Text: text})
			}
		}
	}
	if len(out) > 0 {
		save(c, session)
	}
	return out
}

// Replace drops every queued message and queues text in their place. The
// session is written once.
func Replace(c *gin.Context, level Level, text string) {
	session := sessions.Default(c)
	for _, l := range levels {
		session.Flashes(string(l))
	}
	session.AddFlash(text, string(level))
	save(c, session)
}

func save(c *gin.Context, session sessions.Session) {
	if err := session.Save(); err != nil {
		slog.ErrorContext(c.Request.Context(), "save session", slog.Any("error", err))
	}
}
