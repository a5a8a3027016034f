package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/realestate-detective-backend/internal/application/service"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// GlobalFlags are persistent flags shared by every command
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Output     string
}

// Register binds the global flags to cmd
func (f *GlobalFlags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.ConfigPath, "config", "config.yaml", "Configuration file path (falls back to environment)")
	cmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().StringVarP(&f.Output, "output", "o", "", "Output format: table or json (default: table on a terminal)")
}

// ServeFlags holds the flags for the serve command.
type ServeFlags struct {
	Port int
}

// SearchFlags are the flags of the reconcile and search commands
type SearchFlags struct {
	Region        string
	Period        string // reconcile: YYYYMM
	Start         string // search: YYYY-MM-DD
	End           string // search: YYYY-MM-DD
	PropertyTypes []string
}

// ParsePropertyTypes converts --type values, allowing the aliases ParsePropertyType accepts
func (f SearchFlags) ParsePropertyTypes() ([]transaction.PropertyType, error) {
	out := make([]transaction.PropertyType, 0, len(f.PropertyTypes))
	for _, tag := range f.PropertyTypes {
		pt, err := transaction.ParsePropertyType(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}

// SinglePropertyType returns the one --type of the reconcile command,
// defaulting to commercial
func (f SearchFlags) SinglePropertyType() (transaction.PropertyType, error) {
	if len(f.PropertyTypes) > 1 {
		return "", fmt.Errorf("reconcile takes one --type, got %d (%s)", len(f.PropertyTypes), strings.Join(f.PropertyTypes, ","))
	}
	if len(f.PropertyTypes) == 0 {
		return transaction.Commercial, nil
	}
	return transaction.ParsePropertyType(f.PropertyTypes[0])
}

// ToSearchRequest converts the flags of the search command
func (f SearchFlags) ToSearchRequest() (service.SearchRequest, error) {
	types, err := f.ParsePropertyTypes()
	if err != nil {
		return service.SearchRequest{}, err
	}
	return service.SearchRequest{
		RegionCode:    f.Region,
		Start:         f.Start,
		End:           f.End,
		PropertyTypes: types,
	}, nil
}
