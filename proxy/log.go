package proxy

// logging functions

import (
	"github.com/intuitivelabs/slog"
)

const (
	pDBG  = "DBG: proxy: "
	pINFO = "proxy: "
	pWARN = "WARNING: proxy: "
	pERR  = "ERROR: proxy: "
)

// Log is the package logger. The default level keeps per-request noise
// out; WithVerbose raises it to LDBG.
var Log slog.Log = slog.New(slog.LINFO, slog.LlocInfoS, slog.LStdErr)

// DBGon is a shorthand for checking if logging at LDBG level is enabled.
func DBGon() bool {
	return Log.L(slog.LDBG)
}

// DBG is a shorthand for logging a debug message.
func DBG(f string, a ...interface{}) {
	Log.LLog(slog.LDBG, 1, pDBG, f, a...)
}

// INFO is a shorthand for logging an informational message.
func INFO(f string, a ...interface{}) {
	Log.LLog(slog.LINFO, 1, pINFO, f, a...)
}

// WARN is a shorthand for logging a warning message.
func WARN(f string, a ...interface{}) {
	Log.LLog(slog.LWARN, 1, pWARN, f, a...)
}

// ERR is a shorthand for logging an error message.
func ERR(f string, a ...interface{}) {
	Log.LLog(slog.LERR, 1, pERR, f, a...)
}
