// config.go - Haupt-Konfigurationsfunktionen fuer llamaedge
//
// Dieses Modul enthaelt:
// - Host: Listen-Adresse des API-Servers (LLAMAEDGE_HOST)
// - RunnerURL: Adresse des Inferenz-Runners (LLAMAEDGE_RUNNER)
// - DBPath: Pfad der Chat-History-Datenbank (LLAMAEDGE_DB)
// - LogLevel: Log-Level (LLAMAEDGE_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// NoHistory deaktiviert Readline-History im Chat
	NoHistory = Bool("LLAMAEDGE_NOHISTORY")

	// ContextLength setzt die Standard-Context-Laenge
	ContextLength = Uint("LLAMAEDGE_CONTEXT_LENGTH", 4096)
)

// Host gibt die Listen-Adresse als host:port zurueck
// Konfigurierbar via LLAMAEDGE_HOST
// Default: 127.0.0.1:8080
func Host() string {
	defaultPort := "8080"

	s := strings.TrimSpace(Var("LLAMAEDGE_HOST"))
	if _, hostport, ok := strings.Cut(s, "://"); ok {
		s = hostport
	}
	s, _, _ = strings.Cut(s, "/")

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(s, "[]")); ip != nil {
			host = ip.String()
		} else if s != "" {
			host = s
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return net.JoinHostPort(host, port)
}

// RunnerURL gibt die Basis-URL des Inferenz-Runners zurueck
// Konfigurierbar via LLAMAEDGE_RUNNER
// Default: http://127.0.0.1:8081
func RunnerURL() *url.URL {
	s := strings.TrimSpace(Var("LLAMAEDGE_RUNNER"))
	if s == "" {
		s = "http://127.0.0.1:8081"
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		slog.Warn("invalid runner url, using default", "url", s, "error", err)
		return &url.URL{Scheme: "http", Host: "127.0.0.1:8081"}
	}
	return u
}

// DBPath gibt den Pfad der Chat-History-Datenbank zurueck
// Konfigurierbar via LLAMAEDGE_DB
// Default: $HOME/.llamaedge/history.db
func DBPath() string {
	if s := Var("LLAMAEDGE_DB"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".llamaedge", "history.db")
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via LLAMAEDGE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("LLAMAEDGE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
