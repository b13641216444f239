// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acquirecloud/deadline/golibs/config"
	"github.com/acquirecloud/deadline/golibs/logging"
)

type (
	// Config defines the deadline runner configuration
	Config struct {
		// Journal specifies where the run records go
		Journal *JournalConfig
	}

	// JournalConfig selects and configures the run journal backend
	JournalConfig struct {
		// Backend is either "buntdb" or "redis"
		Backend string
		// DBFilePath is the BuntDB file path, the empty value means the
		// in-memory journal which does not survive the process
		DBFilePath string
		// RedisAddress is the Redis server host:port, for the redis backend
		RedisAddress string
		// RedisPassword, if the Redis server requires one
		RedisPassword string
		// RedisDB is the Redis database number
		RedisDB int
	}
)

const (
	BackendBuntDB = "buntdb"
	BackendRedis  = "redis"
)

// getDefaultConfig returns the default runner config
func getDefaultConfig() *Config {
	return &Config{
		Journal: &JournalConfig{
			Backend:    BackendBuntDB,
			DBFilePath: defaultDBFilePath(),
		},
	}
}

func defaultDBFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "deadline.db"
	}
	return filepath.Join(home, ".deadline", "journal.db")
}

// BuildConfig composes the runner config: the defaults, overridden by the
// cfgFile values if the file is given, overridden by the DEADLINE_* env
// variables.
func BuildConfig(cfgFile string) (*Config, error) {
	log := logging.NewLogger("deadline.ConfigBuilder")
	log.Debugf("trying to build config. cfgFile=%s", cfgFile)
	e := config.NewEnricher(*getDefaultConfig())
	if cfgFile != "" {
		fe := config.NewEnricher(Config{})
		if err := fe.LoadFromFile(cfgFile); err != nil {
			return nil, fmt.Errorf("could not read data from the file %s: %w", cfgFile, err)
		}
		// overwrite default
		_ = e.ApplyOther(fe)
	}
	_ = e.ApplyEnvVariables("DEADLINE", "_")
	cfg := e.Value()
	return &cfg, nil
}

// String implements fmt.Stringify interface in a pretty console form
func (c *Config) String() string {
	b, _ := json.MarshalIndent(*c, "", "  ")
	return string(b)
}
