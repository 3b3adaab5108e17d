package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabels(t *testing.T) {
	t.Run("ownership and routing", func(t *testing.T) {
		labels := Labels(RoutingOptions{
			Service:    "blog",
			Project:    "sites",
			Hosts:      []string{"blog.example.com", "www.blog.example.com"},
			Network:    "traefiker",
			Entrypoint: "web",
		})

		assert.Equal(t, "true", labels["traefiker.managed"])
		assert.Equal(t, "blog", labels["traefiker.service"])
		assert.Equal(t, "sites", labels["traefiker.project"])
		assert.Equal(t, "true", labels["traefik.enable"])
		assert.Equal(t, "traefiker", labels["traefik.docker.network"])
		assert.Equal(t, "Host(`blog.example.com`) || Host(`www.blog.example.com`)", labels["traefik.http.routers.blog.rule"])
		assert.Equal(t, "web", labels["traefik.http.routers.blog.entrypoints"])
		assert.NotContains(t, labels, "traefik.http.routers.blog.tls")
		assert.NotContains(t, labels, "traefik.http.routers.blog.middlewares")
	})

	t.Run("redirects become ordered middlewares", func(t *testing.T) {
		labels := Labels(RoutingOptions{
			Service: "shop",
			Hosts:   []string{"shop.example.com"},
			Redirects: []Redirect{
				{Regex: "^https?://old.example.com/(.*)", Replacement: "https://shop.example.com/${1}", Permanent: true},
				{Regex: "^/legacy", Replacement: "/", Permanent: false},
			},
		})

		assert.Equal(t, "shop-redirect-0,shop-redirect-1", labels["traefik.http.routers.shop.middlewares"])
		assert.Equal(t, "^https?://old.example.com/(.*)", labels["traefik.http.middlewares.shop-redirect-0.redirectregex.regex"])
		assert.Equal(t, "https://shop.example.com/${1}", labels["traefik.http.middlewares.shop-redirect-0.redirectregex.replacement"])
		assert.Equal(t, "true", labels["traefik.http.middlewares.shop-redirect-0.redirectregex.permanent"])
		assert.Equal(t, "false", labels["traefik.http.middlewares.shop-redirect-1.redirectregex.permanent"])
	})

	t.Run("tls when a resolver is configured", func(t *testing.T) {
		labels := Labels(RoutingOptions{Service: "api", CertResolver: "letsencrypt"})

		assert.Equal(t, "true", labels["traefik.http.routers.api.tls"])
		assert.Equal(t, "letsencrypt", labels["traefik.http.routers.api.tls.certresolver"])
		assert.NotContains(t, labels, "traefik.http.routers.api.rule")
	})
}

func TestHostRule(t *testing.T) {
	assert.Equal(t, "", HostRule(nil))
	assert.Equal(t, "Host(`a.test`)", HostRule([]string{"", "a.test"}))
}
