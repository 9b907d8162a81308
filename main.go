package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	conciergex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/agents/concierge"
	reasonerx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/agents/reasoner"
	hotelapix "github.com/tanpawarit/Chative-Hotel-Concierge/agent/hotelapi"
	llmx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/llm"
	promptx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/prompt"
	searchx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/search"
	toolx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/tool"
	httpapix "github.com/tanpawarit/Chative-Hotel-Concierge/httpapi"
	configx "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/config"
	_ "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/logger/autoload"
	mistralx "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/mistral"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("concierge stopped")
	}
}

func run(ctx context.Context) error {
	hotelCfg := configx.MustNew[hotelapix.Config]("HOTEL_API")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	searchCfg := configx.MustNew[searchx.Config]("SEARCH")
	conciergeCfg := configx.MustNew[conciergex.Config]("CONCIERGE")
	serverCfg := configx.MustNew[httpapix.Config]("SERVER")

	if err := llmCfg.Validate(); err != nil {
		return err
	}

	res, err := openResources(ctx)
	if err != nil {
		return err
	}
	defer res.Close()

	hotelClient, err := hotelapix.NewClient(*hotelCfg)
	if err != nil {
		return err
	}
	searcher, err := searchx.New(*searchCfg)
	if err != nil {
		return err
	}
	catalog, err := toolx.NewCatalog(hotelClient, searcher)
	if err != nil {
		return err
	}

	mistralCfg := llmCfg.Mistral()
	if llmCfg.ProbeOnStart {
		if err := mistralx.Probe(ctx, mistralx.NewClient(mistralCfg), mistralCfg.Model); err != nil {
			return err
		}
	}
	chatModel, err := mistralCfg.New(ctx)
	if err != nil {
		return err
	}
	reasoner, err := reasonerx.New(ctx, chatModel, catalog.Tools(), llmCfg.MaxSteps)
	if err != nil {
		return err
	}

	prompts, err := promptx.LoadPromptSet(ctx, conciergeCfg.Prompt())
	if err != nil {
		return err
	}
	svc, err := conciergex.New(res.store, reasoner, prompts, *conciergeCfg, conciergex.WithArchiver(res.archiver))
	if err != nil {
		return err
	}

	if conciergeCfg.BootstrapOnStart {
		if _, err := svc.Bootstrap(ctx, ""); err != nil {
			return err
		}
	}

	server := httpapix.NewServer(svc,
		httpapix.WithTurnTimeout(serverCfg.TurnTimeout),
		httpapix.WithAllowedOrigin(serverCfg.AllowedOrigin),
	)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", serverCfg.Addr).
			Str("model", mistralCfg.Model).
			Strs("tools", catalog.Names()).
			Msg("concierge listening")
		errCh <- server.ListenAndServe(serverCfg.Addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(serverCfg.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := svc.ArchiveAll(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("archive on shutdown")
	}
	log.Info().Msg("concierge stopped")
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}
