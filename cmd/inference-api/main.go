package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
	"github.com/sprakpolisen/dedem/lib/filter"
	"github.com/sprakpolisen/dedem/lib/history"
	"github.com/sprakpolisen/dedem/lib/pipeline"
)

// config structure
type inferenceAPIConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		HttpPort     int      `mapstructure:"http_port"`
		AllowOrigins []string `mapstructure:"allow_origins"`
		MaxBodyBytes int64    `mapstructure:"max_body_bytes"`
	}
	Pipeline pipeline.Config
}

var config inferenceAPIConfig

func initConfig() {
	defaults := pipeline.DefaultConfig(filter.DemoThreshold)
	// the demo never replies, so it keeps no history.
	defaults["history"] = map[string]interface{}{"type": string(history.None)}

	err := lib.InitializeConfig("./config/inference-api.yml", map[string]interface{}{
		"log_level": "info",
		"server": map[string]interface{}{
			"http_port":      8080,
			"allow_origins":  []string{"*"},
			"max_body_bytes": 64 * 1024,
		},
		"pipeline": defaults,
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func main() {
	initConfig()

	p, err := pipeline.Build(config.Pipeline)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.Server.AllowOrigins
	r.Use(cors.New(corsConfig))

	s := server{controller: controller{pipeline: p}, maxBodyBytes: config.Server.MaxBodyBytes}
	s.RegisterRoutes(r)
	if err := r.Run(fmt.Sprintf(":%d", config.Server.HttpPort)); err != nil {
		log.Fatal().Err(err).Send()
	}
}
