package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipechat/internal/chat"
	"recipechat/internal/config"
	"recipechat/internal/dataset"
	"recipechat/internal/docstore"
	"recipechat/internal/docstore/bleve"
	"recipechat/internal/docstore/memory"
	"recipechat/internal/domain"
	"recipechat/internal/generator"
	"recipechat/internal/retriever"
	"recipechat/internal/service"
)

// buildApp assembles the pipeline. Any startup failure leaves the app unavailable
// instead of stopping the process.
func buildApp(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) *chat.App {
	var loader domain.Loader
	switch cfg.Dataset.Source {
	case "hub", "":
		loader = dataset.NewHubLoader(dataset.HubConfig{
			BaseURL:  cfg.Dataset.BaseURL,
			Dataset:  cfg.Dataset.Name,
			Config:   cfg.Dataset.Config,
			Split:    cfg.Dataset.Split,
			TokenEnv: cfg.Dataset.TokenEnv,
			MaxRows:  cfg.Dataset.MaxRows,
			PageSize: cfg.Dataset.PageSize,
			Timeout:  time.Duration(cfg.Dataset.TimeoutSecs) * time.Second,
		}, logger)
	case "file":
		loader = dataset.NewFileLoader(cfg.Dataset.Path)
	default:
		return unavailable(logger, fmt.Errorf("unknown dataset source: %s", cfg.Dataset.Source))
	}

	start := time.Now()
	docs, err := loader.Load(ctx)
	if err != nil {
		logger.Error("Dataset could not be loaded", zap.Error(err))
		return chat.Unavailable(err)
	}
	logger.Info("Dataset loaded",
		zap.Int("documents", len(docs)),
		zap.Duration("elapsed", time.Since(start)))

	completer, err := generator.NewHFCompleter(generator.HFConfig{
		BaseURL:     cfg.Generator.BaseURL,
		APIKeyEnv:   cfg.Generator.APIKeyEnv,
		Model:       cfg.Generator.Model,
		MaxTokens:   cfg.Generator.MaxTokens,
		Temperature: cfg.Generator.Temperature,
	}, logger)
	if err != nil {
		return unavailable(logger, err)
	}

	var st docstore.Storage
	switch cfg.Index.Type {
	case "bleve", "":
		bs, err := bleve.NewStorage()
		if err != nil {
			return unavailable(logger, err)
		}
		st = bs
	case "memory":
		st = memory.NewStorage()
	default:
		return unavailable(logger, fmt.Errorf("unknown index type: %s", cfg.Index.Type))
	}
	if err := st.Index(ctx, docs); err != nil {
		_ = st.Close()
		return unavailable(logger, fmt.Errorf("index documents: %w", err))
	}

	ret := retriever.New(st, cfg.Retriever.TopK, logger)
	gen := generator.New(completer, time.Duration(cfg.Generator.TimeoutSecs)*time.Second, logger)
	svc := service.NewRAGService(ret, gen, logger)
	logger.Info("Pipeline ready",
		zap.String("index", cfg.Index.Type),
		zap.Int("top_k", ret.TopK()),
		zap.String("model", completer.Model()))
	return chat.Ready(&chat.AppContext{Store: st, Pipeline: svc, Documents: len(docs)})
}

func unavailable(logger *zap.Logger, err error) *chat.App {
	logger.Error("Pipeline unavailable", zap.Error(err))
	return chat.Unavailable(err)
}
