package handler

import (
	"os"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type xmlTemporalCase struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Text   string `yaml:"text"`
	Year   int    `yaml:"year"`
	Month  int    `yaml:"month"`
	Day    int    `yaml:"day"`
	Hour   int    `yaml:"hour"`
	Minute int    `yaml:"minute"`
	Second int    `yaml:"second"`
}

type xmlTemporalFixture struct {
	Cases []xmlTemporalCase `yaml:"cases"`
}

func loadXMLTemporalCases(t *testing.T) []xmlTemporalCase {
	t.Helper()
	data, err := os.ReadFile("testdata/xmltemporal_cases.yaml")
	require.NoError(t, err)

	var fixture xmlTemporalFixture
	require.NoError(t, yaml.Unmarshal(data, &fixture))
	require.NotEmpty(t, fixture.Cases)
	return fixture.Cases
}

func kindFromName(name string) XMLKind {
	switch name {
	case "date":
		return XMLDate
	case "time":
		return XMLTime
	default:
		return XMLDateTime
	}
}

func TestXMLTemporalHandlerGoldenCases(t *testing.T) {
	for _, c := range loadXMLTemporalCases(t) {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			h := &XMLTemporalHandler{Kind: kindFromName(c.Kind)}
			v, err := h.Parse(c.Text)
			require.NoError(t, err)

			tm := v.Time()
			if c.Year != 0 {
				assert.Equal(t, c.Year, tm.Year())
			}
			if c.Month != 0 {
				assert.Equal(t, c.Month, int(tm.Month()))
			}
			if c.Day != 0 {
				assert.Equal(t, c.Day, tm.Day())
			}
			assert.Equal(t, c.Hour, tm.Hour())
			assert.Equal(t, c.Minute, tm.Minute())
			assert.Equal(t, c.Second, tm.Second())
		})
	}
}
