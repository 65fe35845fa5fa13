package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/listingsmith/pkg/adapter"
	"github.com/zen-systems/listingsmith/pkg/config"
	"github.com/zen-systems/listingsmith/pkg/generate"
	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/logging"
	"github.com/zen-systems/listingsmith/pkg/prompt"
)

var (
	configFile   string
	providerFlag string
	modelFlag    string
	debugFlag    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "listingsmith",
		Short: "AI listing tools for phone resellers",
		Long: `Listingsmith writes marketplace captions, search tags, price suggestions
	and catalog details for second-hand phones using a configured LLM provider.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to generation config file")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "override the configured provider")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override the provider's default model")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(captionCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(priceCmd())
	rootCmd.AddCommand(autofillCmd())
	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// phoneFlags are the listing details shared by the generation commands.
type phoneFlags struct {
	condition string
	storage   string
	variant   string
	ram       string
}

func (f *phoneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.condition, "condition", "", "phone condition (e.g. Mint, Good)")
	cmd.Flags().StringVar(&f.storage, "storage", "", "storage size (e.g. 128GB)")
	cmd.Flags().StringVar(&f.variant, "variant", "", "color or variant")
	cmd.Flags().StringVar(&f.ram, "ram", "", "RAM size")
}

func captionCmd() *cobra.Command {
	var flags phoneFlags
	var template string

	cmd := &cobra.Command{
		Use:   "caption [model]",
		Short: "Write a marketplace caption",
		Long: `Writes a plain-text marketplace caption for the phone.

	Use --template to fill a custom template instead. Placeholders:
	{model} {condition} {storage} {variant} {ram}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()

			caption, err := svc.Caption(cmd.Context(), listing.CaptionRequest{
				Model:     args[0],
				Condition: flags.condition,
				Storage:   flags.storage,
				Variant:   flags.variant,
				RAM:       flags.ram,
				Template:  template,
			})
			if err != nil {
				return err
			}
			fmt.Println(caption)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&template, "template", "", "caption template with {placeholders}")
	return cmd
}

func tagsCmd() *cobra.Command {
	var flags phoneFlags

	cmd := &cobra.Command{
		Use:   "tags [model]",
		Short: "Generate search tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()

			tags, err := svc.Tags(cmd.Context(), listing.TagsRequest{
				Model:   args[0],
				Storage: flags.storage,
				Variant: flags.variant,
			})
			if err != nil {
				return err
			}
			fmt.Println(strings.Join(tags, ", "))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func priceCmd() *cobra.Command {
	var flags phoneFlags
	var sales []string
	var minPrice, maxPrice float64

	cmd := &cobra.Command{
		Use:   "price [model]",
		Short: "Suggest listing prices",
		Long: `Suggests a listing price plus rush, safe and high price points.

	Use --sale to pass past sales as price:condition (repeatable, newest first).
	Use --min and --max to keep every suggestion inside the marketplace range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			past, err := parseSales(sales)
			if err != nil {
				return err
			}

			req := listing.PriceRequest{
				Model:     args[0],
				Storage:   flags.storage,
				Condition: flags.condition,
				PastSales: past,
			}
			if minPrice > 0 && maxPrice > 0 {
				req.MarketplaceRange = &listing.PriceRange{Min: minPrice, Max: maxPrice}
			}

			svc, logger, err := newService(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()

			s, err := svc.PriceSuggestion(cmd.Context(), req)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "POINT\tPRICE")
			fmt.Fprintf(w, "suggested\t%s\n", prompt.FormatPeso(s.Suggested))
			fmt.Fprintf(w, "rush\t%s\n", prompt.FormatPeso(s.Rush))
			fmt.Fprintf(w, "safe\t%s\n", prompt.FormatPeso(s.Safe))
			fmt.Fprintf(w, "high\t%s\n", prompt.FormatPeso(s.High))
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&sales, "sale", nil, "past sale as price:condition")
	cmd.Flags().Float64Var(&minPrice, "min", 0, "marketplace minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max", 0, "marketplace maximum price")
	return cmd
}

func autofillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autofill [model]",
		Short: "Infer storage options, colors and typical prices for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService(cmd.Context())
			if err != nil {
				return err
			}
			defer logger.Sync()

			info, err := svc.AutoFill(cmd.Context(), listing.AutoFillRequest{Model: args[0]})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and whether a credential is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tSTATUS\tSELECTED")
			for _, name := range []string{"google", "openai", "anthropic", "deepseek", "mock"} {
				probe := *cfg
				probe.Provider = name
				status := "no key"
				if probe.HasCredential() {
					status = "ready"
				}
				selected := ""
				if name == cfg.Provider {
					selected = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, selected)
			}
			return w.Flush()
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if providerFlag != "" {
		cfg.Provider = strings.ToLower(providerFlag)
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	return cfg, nil
}

// newService wires config, logger and adapter into a generation service.
func newService(ctx context.Context) (*generate.Service, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(debugFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	svc, err := buildService(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}

func buildService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*generate.Service, error) {
	a, err := cfg.NewAdapter(ctx)
	if err != nil {
		return nil, err
	}
	if a == nil {
		fmt.Fprintf(os.Stderr, "No credential for provider %s; AI tools are disabled\n", cfg.Provider)
	} else {
		model := cfg.Model
		if model == "" {
			model = adapter.DefaultModel(a)
		}
		fmt.Fprintf(os.Stderr, "Using %s/%s\n", a.Name(), model)
	}

	return generate.NewService(a,
		generate.WithModel(cfg.Model),
		generate.WithLogger(logger),
		generate.WithController(cfg.RetryController(logging.Named(logger, "retry"))),
	), nil
}

// parseSales reads price:condition pairs.
func parseSales(values []string) ([]listing.Sale, error) {
	sales := make([]listing.Sale, 0, len(values))
	for _, v := range values {
		priceText, condition, _ := strings.Cut(v, ":")
		price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid --sale %q: want price:condition", v)
		}
		sales = append(sales, listing.Sale{Price: price, Condition: strings.TrimSpace(condition)})
	}
	return sales, nil
}
