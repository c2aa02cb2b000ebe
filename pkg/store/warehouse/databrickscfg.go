package warehouse

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

const defaultHttpPath = "/sql/1.0/warehouses/warehouse"

// Profile is a single section of a .databrickscfg file.
type Profile struct {
	Name  string
	Host  string
	Token string
}

type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	host := section.Key("host").String()
	token := section.Key("token").String()
	if host == "" || token == "" {
		return nil, fmt.Errorf("profile %s must define host and token", name)
	}

	return &Profile{
		Name:  name,
		Host:  host,
		Token: token,
	}, nil
}

// DatabricksDSN builds a databricks-sql-go DSN for a SQL warehouse.
func DatabricksDSN(profile Profile, httpPath string) string {
	if httpPath == "" {
		httpPath = defaultHttpPath
	}
	host := strings.TrimPrefix(strings.TrimPrefix(profile.Host, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("token:%s@%s%s", profile.Token, host, httpPath)
}
