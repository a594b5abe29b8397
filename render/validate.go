package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mailbuilder/assets"
	"mailbuilder/blocks"
	"mailbuilder/common"
	"mailbuilder/mail"
	"mailbuilder/state"
)

// Validate is the action of validate command. Every source found is checked
// without producing output, problems are logged per source.
func Validate(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("validate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	if err := env.SetCharset(cmd.String("charset")); err != nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.Error(err))
	}

	var (
		checked int
		invalid error
	)
	err = process(ctx, src, "", func(_ context.Context, s *Source) error {
		checked++
		res, err := CheckSource(s, env, log)
		if err != nil {
			invalid = multierr.Append(invalid, fmt.Errorf("%s: %w", s.Name, err))
			return nil
		}
		if !res.Valid {
			log.Warn("Source is not valid", zap.String("source", s.Name), zap.Strings("problems", res.Errors))
			invalid = multierr.Append(invalid, fmt.Errorf("%s: %d problem(s)", s.Name, len(res.Errors)))
			return nil
		}
		log.Info("Source is valid", zap.String("source", s.Name))
		return nil
	}, log)
	if err != nil {
		return err
	}

	if n := len(multierr.Errors(invalid)); n > 0 {
		return fmt.Errorf("%d of %d source(s) failed validation: %w", n, checked, invalid)
	}
	log.Info("Validation completed", zap.Int("sources", checked))
	return nil
}

// CheckSource validates single source. Templates are checked block by block,
// email styles and local images included. HTML sources must parse and
// export.
func CheckSource(src *Source, env *state.LocalEnv, log *zap.Logger) (common.ValidationResult, error) {
	res := common.NewValidationResult()

	switch kindOf(src.Name) {
	case kindTemplate:
		codec, err := mail.CodecFromPath(src.Name)
		if err != nil {
			return res, err
		}
		t, err := mail.Decode(bytes.NewReader(src.Data), codec)
		if err != nil {
			return res, fmt.Errorf("unable to decode template: %w", err)
		}
		res.Merge("", mail.ValidateAll(t.Blocks))
		if t.Email != nil {
			res.Merge("email: ", t.Email.Validate())
		}
		if src.Load != nil {
			for i, b := range t.Blocks {
				if b.Type != common.BlockTypeImage || !assets.IsLocal(b.Content.Src) {
					continue
				}
				if _, err := src.Load(b.Content.Src); err != nil {
					res.Addf("block %d (%s): image is not available: %v", i, b.ID, err)
				}
			}
		}
	case kindHTML:
		data, err := env.DecodeSource(src.Data)
		if err != nil {
			return res, err
		}
		s, err := blocks.NewSession(string(data), blocks.SessionOptions{AdoptInline: env.Cfg.Styles.AdoptInline}, log)
		if err != nil {
			return res, err
		}
		defer s.Close()
		if _, err := s.Export(); err != nil {
			return res, err
		}
	default:
		return res, fmt.Errorf("unsupported source type (%s)", src.Name)
	}
	return res, nil
}
