package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AlexisVallejos/macroentreno-flet/internal/catalog"
	"github.com/AlexisVallejos/macroentreno-flet/internal/config"
	"github.com/AlexisVallejos/macroentreno-flet/internal/provider/fatsecret"
	"github.com/AlexisVallejos/macroentreno-flet/internal/provider/usda"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

const (
	usdaSignupURL        = "https://api.data.gov/signup/"
	usdaRateLimitSummary = "USDA default rate limit is 1,000 requests per hour per IP."
	searchTimeout        = 10 * time.Second
)

var (
	searchLimit  int
	searchAPIKey string
	searchJSON   bool
	searchPick   int
	searchGrams  float64
	searchMeal   string
	searchDate   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search foods in FatSecret, the USDA database and the local catalog",
	Long:  "Search foods in FatSecret and FoodData Central (each when credentials are configured) and fall back to the local catalog file.\n\n" + usdaHelpText(),
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		chain, err := buildCatalog(cfg, searchAPIKey, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), searchTimeout)
		defer cancel()
		query := strings.Join(args, " ")
		foods, err := chain.Search(ctx, query, searchLimit)
		if err != nil {
			return err
		}

		if searchPick > 0 {
			if searchPick > len(foods) {
				return fmt.Errorf("--pick %d is out of range (%d results)", searchPick, len(foods))
			}
			return logCatalogFood(cmd, foods[searchPick-1])
		}
		if searchJSON {
			b, err := json.MarshalIndent(foods, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal search results json: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		out := cmd.OutOrStdout()
		if len(foods) == 0 {
			fmt.Fprintf(out, "No foods found for %q\n", query)
			return nil
		}
		fmt.Fprintln(out, "#\tSOURCE\tNAME\tPORTION\tKCAL\tP\tC\tF")
		for i, f := range foods {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", i+1, f.Source, f.Name, service.DescribePortion(&f.Portion), formatMacros(f.Macros.Kcal, f.Macros.Protein, f.Macros.Carbs, f.Macros.Fat))
		}
		return nil
	},
}

// buildCatalog orders the sources FatSecret, USDA, local file, so the local
// file only answers when the remote ones are unavailable or have nothing.
func buildCatalog(cfg config.Config, apiKey string, logger *zap.Logger) (catalog.Chain, error) {
	chain := catalog.Chain{Logger: logger}
	if fs := cfg.FatSecret; strings.TrimSpace(fs.ConsumerKey) != "" && strings.TrimSpace(fs.ConsumerSecret) != "" {
		chain.Searchers = append(chain.Searchers, &fatsecret.Client{
			ConsumerKey:    fs.ConsumerKey,
			ConsumerSecret: fs.ConsumerSecret,
			Region:         fs.Region,
			Language:       fs.Language,
			APIURL:         fs.APIURL,
		})
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = cfg.USDA.APIKey
	}
	if strings.TrimSpace(apiKey) != "" {
		chain.Searchers = append(chain.Searchers, &usda.Client{APIKey: apiKey, BaseURL: cfg.USDA.BaseURL})
	}
	if strings.TrimSpace(cfg.Catalog.Path) != "" {
		local, err := catalog.LoadLocal(cfg.Catalog.Path)
		if err != nil {
			return catalog.Chain{}, err
		}
		chain.Searchers = append(chain.Searchers, local)
	}
	if len(chain.Searchers) == 0 {
		return catalog.Chain{}, fmt.Errorf("no food source configured: set %s_CATALOG_PATH, %s_USDA_API_KEY or the %s_FATSECRET_CONSUMER_KEY/SECRET pair\n\n%s", config.EnvPrefix, config.EnvPrefix, config.EnvPrefix, usdaHelpText())
	}
	return chain, nil
}

// logCatalogFood adds the chosen item to the diary, scaling macros and
// nutrients to --grams.
func logCatalogFood(cmd *cobra.Command, food catalog.Food) error {
	grams := searchGrams
	if grams <= 0 {
		grams = food.Portion.Grams
	}
	m := service.ScaleMacros(food.AsCustomFood(), grams)
	in := service.FoodEntryInput{
		Date:    dateOrToday(searchDate),
		Meal:    searchMeal,
		Name:    food.Name,
		Grams:   grams,
		Kcal:    m.Kcal,
		Protein: m.Protein,
		Carbs:   m.Carbs,
		Fat:     m.Fat,
		Food:    food.Ref(),
	}
	ratio := 1.0
	if food.Portion.Grams > 0 {
		ratio = grams / food.Portion.Grams
	}
	for _, n := range food.Nutrients {
		amount := n.Amount * ratio
		if amount <= 0 {
			continue
		}
		mi := service.MicroInput{Amount: amount, Unit: n.Unit, Source: food.Source}
		if p, ok := service.PresetByID(n.Key); ok {
			mi.Nutrient = p.ID
		} else {
			mi.Label = n.Key
		}
		in.Micros = append(in.Micros, mi)
	}
	return withStore(cmd, func(s *store.Store) error {
		e, err := service.NewDiary(s).Add(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (%s, %g g, %.0f kcal, %d micronutrients)\n", e.EntryID, e.Name, e.Grams, e.Kcal, len(e.Micros))
		return nil
	})
}

func usdaHelpText() string {
	return strings.Join([]string{
		"USDA FoodData Central setup:",
		"  1. Get a free API key at " + usdaSignupURL,
		"  2. export " + config.EnvPrefix + "_USDA_API_KEY=<key> (or usda.api_key in config.yaml)",
		"  " + usdaRateLimitSummary,
	}, "\n")
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 8, "Maximum results")
	searchCmd.Flags().StringVar(&searchAPIKey, "api-key", "", "USDA API key (overrides config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
	searchCmd.Flags().IntVar(&searchPick, "pick", 0, "Log result number N to the diary")
	searchCmd.Flags().Float64Var(&searchGrams, "grams", 0, "Grams to log with --pick (default one portion)")
	searchCmd.Flags().StringVar(&searchMeal, "meal", "", "Meal to log with --pick")
	searchCmd.Flags().StringVar(&searchDate, "date", "", "Date to log with --pick (default today)")
	rootCmd.AddCommand(searchCmd)
}
