// Package chat holds the application lifecycle and the per-session chat handler.
package chat

import (
	"errors"

	"recipechat/internal/docstore"
	"recipechat/internal/domain"
)

// AppContext owns the components built at startup. Nothing here is global, so
// several independent instances can coexist.
type AppContext struct {
	Store     docstore.Storage
	Pipeline  domain.AnswerPipeline
	Documents int
}

// Close releases the document store.
func (c *AppContext) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// App is either ready to answer, or unavailable with a reason.
type App struct {
	ctx    *AppContext
	reason error
}

// Ready returns an application that serves requests with ctx.
func Ready(ctx *AppContext) *App {
	return &App{ctx: ctx}
}

// Unavailable returns an application that answers every message with reason.
func Unavailable(reason error) *App {
	if reason == nil {
		reason = errors.New("not initialized")
	}
	return &App{reason: reason}
}

// Available reports whether the pipeline can be used.
func (a *App) Available() bool { return a.ctx != nil }

// Context returns the application context, or nil when unavailable.
func (a *App) Context() *AppContext { return a.ctx }

// Reason returns why the application is unavailable, or nil.
func (a *App) Reason() error { return a.reason }

// Close releases the application context, if any.
func (a *App) Close() error {
	if a.ctx == nil {
		return nil
	}
	return a.ctx.Close()
}
