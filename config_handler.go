package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"atec/config"
	"atec/httperr"

	"go.uber.org/zap"
)

type settings struct {
	App    config.AppConfig    `json:"app"`
	Report config.ReportConfig `json:"report"`
}

// GetConfigHandler returns the sections editable from the settings screen.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig()
		httperr.WriteJSON(w, http.StatusOK, settings{App: cfg.App, Report: cfg.Report})
	}
}

func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var next settings
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			httperr.BadRequest(w, "Requisição inválida.")
			return
		}
		if err := next.validate(); err != nil {
			httperr.Write(w, err)
			return
		}

		if err := config.SaveConfig(next.App, next.Report); err != nil {
			zap.S().Errorf("failed to save config: %v", err)
			httperr.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Falha ao salvar as configurações."})
			return
		}

		cfg := config.GetConfig()
		zap.S().Infof("settings updated: page size %d, max units %d, expiring days %d",
			cfg.App.PageSize, cfg.App.MaxUnitsPerTransaction, cfg.App.ExpiringSoonDays)
		httperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "Configurações salvas.",
			"settings": settings{App: cfg.App, Report: cfg.Report},
		})
	}
}

func (s settings) validate() error {
	v := httperr.NewValidationError()
	if s.App.PageSize < 0 || s.App.PageSize > 200 {
		v.Add("app.pageSize", "O tamanho da página deve estar entre 1 e 200.")
	}
	if s.App.MaxUnitsPerTransaction < 0 {
		v.Add("app.maxUnitsPerTransaction", "O limite de unidades não pode ser negativo.")
	}
	if s.App.ExpiringSoonDays < 0 {
		v.Add("app.expiringSoonDays", "O número de dias não pode ser negativo.")
	}
	if s.Report.TimeoutSeconds < 0 {
		v.Add("report.timeoutSeconds", "O tempo limite não pode ser negativo.")
	}
	if err := validateExecutablePath(s.Report.ChromeBin); err != nil {
		v.Add("report.chromeBin", err.Error())
	}
	return v.OrNil()
}

// validateExecutablePath accepts an empty path, which lets rod locate or download a browser.
func validateExecutablePath(path string) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("Executável não encontrado: %s", path)
		}
		zap.S().Warnf("failed to stat %s: %v", path, err)
		return errors.New("Erro ao verificar o caminho do executável.")
	}
	if info.IsDir() {
		return fmt.Errorf("O caminho informado é uma pasta: %s", path)
	}
	return nil
}
