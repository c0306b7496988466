package api

import (
	"github.com/rs/zerolog"

	"github.com/unheard/unheard-backend/pkg/config"
	"github.com/unheard/unheard-backend/pkg/service"
	httpapi "github.com/unheard/unheard-backend/pkg/service/core/api/http"
)

type Clients struct {
	CMSAPI service.CMSAPI
}

func NewClients(cfg config.Config, log zerolog.Logger) *Clients {
	return &Clients{
		CMSAPI: httpapi.NewCMSAPI(
			cfg.CMS.APIURL,
			cfg.CMS.APIToken,
			cfg.Debug,
			log.With().Str("component", "cms").Logger(),
		),
	}
}
