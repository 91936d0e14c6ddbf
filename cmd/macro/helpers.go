package macro

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AlexisVallejos/macroentreno-flet/internal/app"
	"github.com/AlexisVallejos/macroentreno-flet/internal/config"
	"github.com/AlexisVallejos/macroentreno-flet/internal/logging"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

const dateLayout = "2006-01-02"

var flagKeys = map[string]string{
	"data.path":    "data",
	"data.backend": "backend",
	"log.level":    "log-level",
}

func loadConfig() (config.Config, error) {
	v := config.NewViper()
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return config.Config{}, fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	dir, err := app.ConfigDir()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(v, dir, ".env")
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cmd.ErrOrStderr())
}

func withStore(cmd *cobra.Command, run func(*store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := app.EnsureDataDir(cfg.Data.Path); err != nil {
		return err
	}
	var b store.Backend
	if cfg.Data.Backend == config.BackendSQLite {
		sqlb, err := store.OpenSQLite(cfg.Data.Path)
		if err != nil {
			return err
		}
		defer sqlb.Close()
		b = sqlb
	} else {
		b = store.NewFileBackend(cfg.Data.Path)
	}
	return run(store.New(b, store.WithLogger(logger)))
}

func dateOrToday(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().Format(dateLayout)
	}
	return date
}

func parseFloatArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(value), ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return v, nil
}

// parseMicroFlag reads "iron=1.2mg" or "Omega 3=500 mg" into a micronutrient
// input. Known preset ids keep their preset label and unit.
func parseMicroFlag(value string) (service.MicroInput, error) {
	name, amount, ok := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return service.MicroInput{}, fmt.Errorf("invalid --micro %q (expected name=amount[unit])", value)
	}
	amount = strings.TrimSpace(amount)
	end := strings.IndexFunc(amount, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != ','
	})
	unit := ""
	if end >= 0 {
		unit = strings.TrimSpace(amount[end:])
		amount = amount[:end]
	}
	v, err := service.ParseAmount(amount)
	if err != nil {
		return service.MicroInput{}, fmt.Errorf("invalid --micro %q: %w", value, err)
	}
	in := service.MicroInput{Amount: v, Unit: unit}
	if p, ok := service.PresetByID(strings.ToLower(name)); ok {
		in.Nutrient = p.ID
	} else {
		in.Label = name
	}
	return in, nil
}

func formatMacros(kcal, protein, carbs, fat float64) string {
	return fmt.Sprintf("%.0f\t%.1f\t%.1f\t%.1f", kcal, protein, carbs, fat)
}
