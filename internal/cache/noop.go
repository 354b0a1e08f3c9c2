package cache

import (
	"context"
	"time"
)

// Noop is a Store that never holds anything, used when caching is disabled.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Name() string                                             { return "none" }
func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
func (Noop) Clear(context.Context) error                              { return nil }
func (Noop) Close() error                                             { return nil }
