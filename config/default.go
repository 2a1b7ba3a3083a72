package config

import (
	"time"
)

// DefaultReservedParams are the query parameters never used as filters by default.
func DefaultReservedParams() []string {
	return []string{"search", "ordering", "limit", "offset", "page", "page_size", "format"}
}

// DefaultFancy returns default view set query settings.
func DefaultFancy() *Fancy {
	return &Fancy{
		TypeCasting:    true,
		ReservedParams: DefaultReservedParams(),
		SearchParam:    "search",
		OrderingParam:  "ordering",
		LimitParam:     "limit",
		OffsetParam:    "offset",
	}
}

// DefaultGateway returns the default gateway configuration.
func DefaultGateway() *Gateway {
	return &Gateway{
		Port:              8080,
		ReadTimeout:       time.Second * 10,
		ReadHeaderTimeout: time.Second * 5,
		WriteTimeout:      time.Second * 10,
		IdleTimeout:       time.Second * 120,
		ShutdownTimeout:   time.Second * 10,
		Router:            &Router{DefaultMiddlewares: []string{CredentialMiddleware}},
	}
}
