// Package logger re-exports dutydesk/pkg/logger so internal packages share a
// single import path for logging.
package logger

import (
	pkglogger "dutydesk/pkg/logger"
)

type (
	Logger = pkglogger.Logger
	Config = pkglogger.Config
	Format = pkglogger.Format
)

const (
	DefaultTraceIDKey = pkglogger.DefaultTraceIDKey
	FormatJSON        = pkglogger.FormatJSON
	FormatText        = pkglogger.FormatText
)

var (
	New                = pkglogger.New
	NewWithConfig      = pkglogger.NewWithConfig
	NewWithContext     = pkglogger.NewWithContext
	ContextWithTraceID = pkglogger.ContextWithTraceID
	TraceIDFromContext = pkglogger.TraceIDFromContext
)
