/*
 * Copyright (c) 2024 Golang Argentina
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
 * of the Software, and to permit persons to whom the Software is furnished to do
 * so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
 * INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
 * PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
 * HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF
 * CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE
 * OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 */

// Package eprom holds the fiscal printer's fictitious EPROM record: the
// company identity burned in at fiscalization time plus the configurable
// fantasy and header/trailer lines. The record is immutable once the
// emulator starts; only the header/trailer lines have a runtime working
// copy.
package eprom

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LineWidth is the printable width of the emulated ticket. Header and
// trailer lines longer than this are truncated.
const LineWidth = 40

// HeaderTrailerLines is the number of programmable header/trailer slots.
// Slots 1-7 print in the header ahead of the document title, 8-10 after
// the customer block, 11-14 at the tail; the rest are reserved.
const HeaderTrailerLines = 20

type Config struct {
	RazonSocial  string `yaml:"razon_social"`
	CUIT         string `yaml:"cuit"`
	IB           string `yaml:"ib"`
	Inicio       string `yaml:"inicio"`
	PV           int    `yaml:"pv"`
	LastCounterA int    `yaml:"last_counter_A"`
	LastCounterB int    `yaml:"last_counter_B"`

	Fantasy       map[int]string `yaml:"fantasy"`
	HeaderTrailer map[int]string `yaml:"headertrailer"`
}

// Default returns the record of the reference device.
func Default() *Config {
	return &Config{
		RazonSocial:  "CARLOS, AUGUSTO Y GERMAN ROCCASALVA S.H.",
		CUIT:         "30-71128142-4",
		IB:           "0619591",
		Inicio:       "02-09-05",
		PV:           3,
		LastCounterA: 365,
		LastCounterB: 790,
		Fantasy: map[int]string{
			1: "\xf4      RIO PLOMO     ",
			2: "",
		},
		HeaderTrailer: map[int]string{
			1: "COLON 125 GODOY CRUZ MENDOZA (M5501ARC)",
			2: "ESTAB: 05-0619591-02 - S.TIMB: 01 S.C.",
		},
	}
}

// Load reads a YAML file over the default record. Keys absent from the
// file keep their default values; fantasy and header/trailer lines merge
// by slot number.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("eprom: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("eprom: could not parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// HeaderTrailerCopy returns the runtime working copy of the
// header/trailer lines with every slot present.
func (c *Config) HeaderTrailerCopy() map[int]string {
	lines := make(map[int]string, HeaderTrailerLines)
	for i := 1; i <= HeaderTrailerLines; i++ {
		lines[i] = truncate(c.HeaderTrailer[i])
	}
	return lines
}

// FantasyCopy returns the fantasy lines with slots 1 and 2 present.
func (c *Config) FantasyCopy() map[int]string {
	lines := map[int]string{1: "", 2: ""}
	for i, text := range c.Fantasy {
		lines[i] = text
	}
	return lines
}

func (c *Config) normalize() {
	for i, text := range c.HeaderTrailer {
		c.HeaderTrailer[i] = truncate(text)
	}
}

func truncate(text string) string {
	if len(text) > LineWidth {
		return text[:LineWidth]
	}
	return text
}
