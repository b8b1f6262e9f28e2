package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title Wikicull API
// @version 0.1
// @description Interactive documentation for the wikicull analysis API surface.
// @contact.name Wikicull Maintainers
// @contact.url https://github.com/wikicull/wikicull
// @BasePath /
