// Package fixture loads demo datasets into a store at startup.
package fixture

import (
	_ "embed"
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/inbox-crm/internal/model"
	"github.com/sells-group/inbox-crm/internal/store"
)

//go:embed seed.yaml
var seedYAML []byte

// Dataset is a set of CRM collections to seed into an empty store.
type Dataset struct {
	Contacts []model.Contact `yaml:"contacts"`
	Deals    []model.Deal    `yaml:"deals"`
	Emails   []model.Email   `yaml:"emails"`
}

// Default returns the embedded demo dataset.
func Default() (*Dataset, error) {
	return parse(seedYAML)
}

// LoadFile reads a dataset from a YAML file.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fixture: read file")
	}
	return parse(data)
}

func parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, eris.Wrap(err, "fixture: unmarshal dataset")
	}
	return &ds, nil
}

// Seed inserts the dataset into the store in declaration order.
func Seed(ctx context.Context, st store.Store, ds *Dataset) error {
	for _, c := range ds.Contacts {
		if err := st.AddContact(ctx, c); err != nil {
			return eris.Wrapf(err, "fixture: seed contact %s", c.ID)
		}
	}
	for _, d := range ds.Deals {
		if err := st.AddDeal(ctx, d); err != nil {
			return eris.Wrapf(err, "fixture: seed deal %s", d.ID)
		}
	}
	for _, e := range ds.Emails {
		if err := st.AddEmail(ctx, e); err != nil {
			return eris.Wrapf(err, "fixture: seed email %s", e.ID)
		}
	}
	return nil
}
