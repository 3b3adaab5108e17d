package server

// @title Traefiker API
// @version 1.0
// @description Lifecycle management for host-routed container services behind Traefik

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http
