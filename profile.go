package main

import (
	"io/ioutil"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

// Profile describes the application and device resources are resolved
// for. It is read from YAML:
//
//	package: com.example.app
//	assets:
//	  - framework-res.apk
//	  - app.apk
//	qualifiers: fr-rFR-port-xhdpi-v26
//	density: 480
//	strict: true
type Profile struct {
	Package    string   `yaml:"package"`
	Assets     []string `yaml:"assets"`
	Qualifiers string   `yaml:"qualifiers"`
	// Explicit overrides applied on top of Qualifiers.
	Locale            string `yaml:"locale"`
	Density           uint16 `yaml:"density"`
	SDKVersion        uint16 `yaml:"sdk"`
	Strict            bool   `yaml:"strict"`
	MaxReferenceDepth int    `yaml:"maxReferenceDepth"`

	config arsc.Config
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "parse profile %s", path)
	}
	return p, nil
}

// Build computes the configuration the profile describes. It must be
// called after the last change to the profile's fields.
func (p *Profile) Build() error {
	c, err := arsc.ParseQualifiers(p.Qualifiers)
	if err != nil {
		return errors.Wrap(err, "qualifiers")
	}
	if p.Locale != "" {
		if err := c.SetLocale(p.Locale); err != nil {
			return errors.Wrap(err, "locale")
		}
	}
	if p.Density != 0 {
		c.Density = p.Density
	}
	if p.SDKVersion != 0 {
		c.SDKVersion = p.SDKVersion
	}
	p.config = c
	return nil
}

func (p *Profile) PackageName() string        { return p.Package }
func (p *Profile) AssetPaths() []string       { return p.Assets }
func (p *Profile) Configuration() arsc.Config { return p.config }
