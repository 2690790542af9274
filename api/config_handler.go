package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ConfigView is the runtime configuration as exposed over the API. The
// Alpha Vantage key is reported as set or unset, never echoed back.
type ConfigView struct {
	Provider   ProviderConfigView   `json:"provider"`
	Datasource DatasourceConfigView `json:"datasource"`
	Projection ProjectionConfigView `json:"projection"`
	API        APIConfigView        `json:"api"`
	Logging    LoggingConfigView    `json:"logging"`
}

// ProviderConfigView is the non-secret provider section.
type ProviderConfigView struct {
	Default            string `json:"default,omitempty"`
	AlphaVantageKeySet bool   `json:"alphaVantageKeySet"`
	CacheTTLSec        int    `json:"cacheTtlSec"`
}

// DatasourceConfigView is the data access section.
type DatasourceConfigView struct {
	BatchConcurrency int      `json:"batchConcurrency"`
	NewsFeeds        []string `json:"newsFeeds,omitempty"`
	NewsLimit        int      `json:"newsLimit"`
}

// ProjectionConfigView is the projection engine section.
type ProjectionConfigView struct {
	DefaultYears int `json:"defaultYears"`
	HistoryYears int `json:"historyYears"`
}

// APIConfigView is the HTTP server section.
type APIConfigView struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"corsOrigins,omitempty"`
}

// LoggingConfigView is the logging section.
type LoggingConfigView struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// ConfigUpdate carries the fields PUT /config may change at runtime.
// Null fields are left untouched. The listen address and credentials
// can only be set through the config file or environment.
type ConfigUpdate struct {
	Provider *struct {
		Default *string `json:"default"`
	} `json:"provider"`
	Datasource *struct {
		BatchConcurrency *int `json:"batchConcurrency"`
		NewsLimit        *int `json:"newsLimit"`
	} `json:"datasource"`
	Projection *struct {
		DefaultYears *int `json:"defaultYears"`
		HistoryYears *int `json:"historyYears"`
	} `json:"projection"`
	Logging *struct {
		Level  *string `json:"level"`
		Format *string `json:"format"`
	} `json:"logging"`
}

func (s *Server) configView() ConfigView {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()

	return ConfigView{
		Provider: ProviderConfigView{
			Default:            s.cfg.Provider.Default,
			AlphaVantageKeySet: s.cfg.Provider.AlphaVantageKey != "",
			CacheTTLSec:        s.cfg.Provider.CacheTTLSec,
		},
		Datasource: DatasourceConfigView{
			BatchConcurrency: s.cfg.Datasource.BatchConcurrency,
			NewsFeeds:        s.cfg.Datasource.NewsFeeds,
			NewsLimit:        s.cfg.Datasource.NewsLimit,
		},
		Projection: ProjectionConfigView{
			DefaultYears: s.cfg.Projection.DefaultYears,
			HistoryYears: s.cfg.Projection.HistoryYears,
		},
		API: APIConfigView{
			Host:        s.cfg.API.Host,
			Port:        s.cfg.API.Port,
			CORSOrigins: s.cfg.API.CORSOrigins,
		},
		Logging: LoggingConfigView{
			Level:  s.cfg.Logging.Level,
			Format: s.cfg.Logging.Format,
		},
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.configView()})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var update ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateConfigUpdate(update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.cfgMu.Lock()
	if update.Provider != nil && update.Provider.Default != nil {
		s.cfg.Provider.Default = *update.Provider.Default
	}
	if update.Datasource != nil {
		if update.Datasource.BatchConcurrency != nil {
			s.cfg.Datasource.BatchConcurrency = *update.Datasource.BatchConcurrency
		}
		if update.Datasource.NewsLimit != nil {
			s.cfg.Datasource.NewsLimit = *update.Datasource.NewsLimit
		}
	}
	if update.Projection != nil {
		if update.Projection.DefaultYears != nil {
			s.cfg.Projection.DefaultYears = *update.Projection.DefaultYears
		}
		if update.Projection.HistoryYears != nil {
			s.cfg.Projection.HistoryYears = *update.Projection.HistoryYears
		}
	}
	if update.Logging != nil {
		if update.Logging.Level != nil {
			s.cfg.Logging.Level = *update.Logging.Level
		}
		if update.Logging.Format != nil {
			s.cfg.Logging.Format = *update.Logging.Format
		}
	}
	s.cfgMu.Unlock()

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.configView()})
}

// validateConfigUpdate rejects out-of-range values before anything is applied.
func validateConfigUpdate(update ConfigUpdate) error {
	if update.Datasource != nil {
		if v := update.Datasource.BatchConcurrency; v != nil && *v <= 0 {
			return fmt.Errorf("datasource.batchConcurrency must be positive")
		}
		if v := update.Datasource.NewsLimit; v != nil && *v <= 0 {
			return fmt.Errorf("datasource.newsLimit must be positive")
		}
	}
	if update.Projection != nil {
		if v := update.Projection.DefaultYears; v != nil && (*v < 1 || *v > 50) {
			return fmt.Errorf("projection.defaultYears must be between 1 and 50")
		}
		if v := update.Projection.HistoryYears; v != nil && *v < 1 {
			return fmt.Errorf("projection.historyYears must be positive")
		}
	}
	if update.Logging != nil && update.Logging.Level != nil {
		switch *update.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging.level must be one of debug, info, warn, error")
		}
	}
	return nil
}
