package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Name            string `toml:"name" yaml:"name"`
	Address         int    `toml:"address" yaml:"address"`
	BootTimeout     int    `toml:"boot_timeout" yaml:"boot_timeout"`
	Tick            string `toml:"tick" yaml:"tick"`
	Version         string `toml:"version" yaml:"version"`
	Signature       []int  `toml:"signature" yaml:"signature"`
	PageSize        int    `toml:"page_size" yaml:"page_size"`
	BootloaderStart int    `toml:"bootloader_start" yaml:"bootloader_start"`
	FlashSize       int    `toml:"flash_size" yaml:"flash_size"`
	EEPROMSize      int    `toml:"eeprom_size" yaml:"eeprom_size"`
	SilenceTicks    int    `toml:"silence_ticks" yaml:"silence_ticks"`
}

// Load reads a target profile. The format is chosen by extension:
// .toml, or .yaml and .yml. The result is validated.
func Load(path string) (Target, error) {
	var (
		raw     fileConfig
		defined func(key string) bool
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Target{}, fmt.Errorf("load target config: %w", err)
		}
		defined = func(key string) bool { return meta.IsDefined(key) }

	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Target{}, fmt.Errorf("load target config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Target{}, fmt.Errorf("load target config: %w", err)
		}
		var keys map[string]interface{}
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return Target{}, fmt.Errorf("load target config: %w", err)
		}
		defined = func(key string) bool {
			_, ok := keys[key]
			return ok
		}

	default:
		return Target{}, fmt.Errorf("load target config: unsupported extension %q", ext)
	}

	cfg, err := overlay(Default(), raw, defined)
	if err != nil {
		return Target{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Target{}, err
	}
	return cfg, nil
}

// overlay applies the defined keys of raw to cfg.
func overlay(cfg Target, raw fileConfig, defined func(key string) bool) (Target, error) {
	if defined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}

	if defined("address") {
		if raw.Address < 0 || raw.Address > 0xFF {
			return Target{}, fmt.Errorf("address 0x%X: must fit in one byte", raw.Address)
		}
		cfg.Address = uint8(raw.Address)
	}

	if defined("boot_timeout") {
		if raw.BootTimeout < 0 || raw.BootTimeout > 0xFFFF {
			return Target{}, fmt.Errorf("boot_timeout %d: must fit in 16 bits", raw.BootTimeout)
		}
		cfg.BootTimeout = uint16(raw.BootTimeout)
	}

	if defined("tick") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Tick))
		if err != nil {
			return Target{}, fmt.Errorf("parse tick: %w", err)
		}
		cfg.Tick = d
	}

	if defined("version") {
		cfg.Version = raw.Version
	}

	if defined("signature") {
		if len(raw.Signature) != 3 {
			return Target{}, fmt.Errorf("signature: got %d bytes, expected 3", len(raw.Signature))
		}
		for i, b := range raw.Signature {
			if b < 0 || b > 0xFF {
				return Target{}, fmt.Errorf("signature byte %d: 0x%X is not a byte", i, b)
			}
			cfg.Signature[i] = byte(b)
		}
	}

	if defined("page_size") {
		cfg.PageSize = raw.PageSize
	}

	if defined("bootloader_start") {
		if raw.BootloaderStart < 0 || raw.BootloaderStart > 0xFFFF {
			return Target{}, fmt.Errorf("bootloader_start 0x%X: must fit in 16 bits", raw.BootloaderStart)
		}
		cfg.BootloaderStart = uint16(raw.BootloaderStart)
	}

	if defined("flash_size") {
		cfg.FlashSize = raw.FlashSize
	}

	if defined("eeprom_size") {
		cfg.EEPROMSize = raw.EEPROMSize
	}

	if defined("silence_ticks") {
		if raw.SilenceTicks < 0 || raw.SilenceTicks > 0xFF {
			return Target{}, fmt.Errorf("silence_ticks %d: must fit in one byte", raw.SilenceTicks)
		}
		cfg.SilenceTicks = uint8(raw.SilenceTicks)
	}

	return cfg, nil
}
