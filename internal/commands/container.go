package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/core/i18n"
	"github.com/hay-kot/parley/internal/core/words"
	"github.com/hay-kot/parley/internal/dictapi"
	"github.com/hay-kot/parley/internal/importer"
	"github.com/hay-kot/parley/internal/integration/voice"
	"github.com/hay-kot/parley/internal/store/jsonfile"
	"github.com/hay-kot/parley/internal/store/transcript"
	"github.com/hay-kot/parley/pkg/executil"
)

// NewInjector registers the services commands draw from. Providers are lazy:
// a command that never touches the transcript never opens it.
func NewInjector(cfg *config.Config, lang *i18n.Lang, id Identity) *do.RootScope {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, lang)
	do.ProvideValue(i, id)

	do.Provide(i, provideExecutor)
	do.Provide(i, provideDictClient)
	do.Provide(i, provideWordService)
	do.Provide(i, provideProgressStore)
	do.Provide(i, provideTranscript)
	do.Provide(i, provideRecognizer)
	do.Provide(i, provideImporter)

	return i
}

func provideExecutor(do.Injector) (executil.Executor, error) {
	return &executil.RealExecutor{}, nil
}

func provideDictClient(i do.Injector) (*dictapi.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return dictapi.New(dictapi.Options{
		BaseURL:   cfg.Dict.BaseURL,
		AppOrigin: cfg.Dict.AppOrigin,
		Timeout:   cfg.Dict.Timeout,
		Logger:    log.With().Str("component", "dictapi").Logger(),
	})
}

func provideWordService(i do.Injector) (*words.Service, error) {
	client, err := do.Invoke[*dictapi.Client](i)
	if err != nil {
		return nil, err
	}
	id := do.MustInvoke[Identity](i)
	return words.NewService(client, id.UserID, log.With().Str("component", "words").Logger()), nil
}

func provideProgressStore(i do.Injector) (words.ProgressStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return jsonfile.New(cfg.ProgressFile()), nil
}

func provideTranscript(i do.Injector) (*transcript.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return transcript.Open(cfg.TranscriptDir(), log.With().Str("component", "transcript").Logger())
}

func provideRecognizer(i do.Injector) (*voice.Recognizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	exec := do.MustInvoke[executil.Executor](i)
	return voice.New(exec, voice.Options{
		Command: cfg.Voice.Command,
		Lang:    cfg.Voice.Lang,
		Timeout: cfg.Voice.Timeout,
		Logger:  log.With().Str("component", "voice").Logger(),
	})
}

func provideImporter(do.Injector) (*importer.Importer, error) {
	return importer.New(afero.NewOsFs(), importer.Options{
		Logger: log.With().Str("component", "importer").Logger(),
	}), nil
}
