package mail

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"mailbuilder/common"
)

// MaxImageDimension limits image width and height attributes.
const MaxImageDimension = 4000

// Validate checks single block.
func Validate(b Block) common.ValidationResult {
	res := common.NewValidationResult()
	if strings.TrimSpace(b.ID) == "" {
		res.Addf("id is empty")
	}
	c := b.Content
	switch b.Type {
	case common.BlockTypeText:
		if strings.TrimSpace(c.Text) == "" {
			res.Addf("text is empty")
		}
	case common.BlockTypeHeading:
		if strings.TrimSpace(c.Text) == "" {
			res.Addf("heading text is empty")
		}
		if c.Level < 0 || c.Level > 6 {
			res.Addf("heading level %d is out of range [1, 6]", c.Level)
		}
	case common.BlockTypeImage:
		if strings.TrimSpace(c.Src) == "" {
			res.Addf("image src is empty")
		} else if !safeURL(c.Src) {
			res.Addf("image src %q is not allowed", c.Src)
		}
		if c.Width < 0 || c.Width > MaxImageDimension {
			res.Addf("image width %d is out of range [0, %d]", c.Width, MaxImageDimension)
		}
		if c.Height < 0 || c.Height > MaxImageDimension {
			res.Addf("image height %d is out of range [0, %d]", c.Height, MaxImageDimension)
		}
	case common.BlockTypeButton:
		if strings.TrimSpace(c.Text) == "" {
			res.Addf("button text is empty")
		}
		if strings.TrimSpace(c.URL) == "" {
			res.Addf("button url is empty")
		} else if !safeURL(c.URL) {
			res.Addf("button url %q is not allowed", c.URL)
		}
	case common.BlockTypeDivider:
		if c.Style != "" && !c.Style.IsValid() {
			res.Addf("divider style %q is not one of %s", c.Style, strings.Join(common.BorderStyleNames(), ", "))
		}
	default:
		res.Addf("unknown block type %q", b.Type)
	}
	for k, v := range b.Styles {
		if !validStyleKey(k) {
			res.Addf("style property %q is malformed", k)
			continue
		}
		if s, ok := v.(string); v == nil || (ok && strings.TrimSpace(s) == "") {
			continue
		}
		if StyleValue(k, v) == "" {
			res.Addf("style %q value %v is not allowed", k, v)
		}
	}
	return res
}

// ValidateAll checks every block and ensures identities are unique.
func ValidateAll(blocks []Block) common.ValidationResult {
	res := common.NewValidationResult()
	seen := make(map[string]int, len(blocks))
	for i, b := range blocks {
		prefix := fmt.Sprintf("block %d (%s): ", i, b.ID)
		res.Merge(prefix, Validate(b))
		if b.ID == "" {
			continue
		}
		if j, dup := seen[b.ID]; dup {
			res.Addf("%sduplicate id, first used by block %d", prefix, j)
			continue
		}
		seen[b.ID] = i
	}
	return res
}

// Normalize returns copy of the block with text normalized to NFC and
// numeric content clamped.
func Normalize(b Block) Block {
	b = b.Clone()
	c := &b.Content
	c.Text = norm.NFC.String(c.Text)
	c.Alt = norm.NFC.String(c.Alt)
	c.Src = strings.TrimSpace(c.Src)
	c.URL = strings.TrimSpace(c.URL)
	if b.Type == common.BlockTypeHeading {
		switch {
		case c.Level > 6:
			c.Level = 6
		case c.Level < 0:
			c.Level = 0
		}
	}
	c.Width = min(max(c.Width, 0), MaxImageDimension)
	c.Height = min(max(c.Height, 0), MaxImageDimension)
	if c.Style != "" && !c.Style.IsValid() {
		if bs, err := common.ParseBorderStyle(strings.ToLower(string(c.Style))); err == nil {
			c.Style = bs
		} else {
			c.Style = common.BorderStyleSolid
		}
	}
	return b
}

// ErrInvalidBlock marks problems reported by Sanitize.
var ErrInvalidBlock = errors.New("invalid block")

// Sanitize normalizes blocks and filters out those which are still invalid
// or have identity already used by earlier block. Problems are logged and
// returned combined, the valid subset is always returned.
func Sanitize(blocks []Block, log *zap.Logger) ([]Block, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		out  = make([]Block, 0, len(blocks))
		errs error
		seen = make(map[string]struct{}, len(blocks))
	)
	for i, b := range blocks {
		b = Normalize(b)
		res := Validate(b)
		if _, dup := seen[b.ID]; dup && b.ID != "" {
			res.Addf("duplicate id")
		}
		if !res.Valid {
			err := fmt.Errorf("%w %d (%s): %s", ErrInvalidBlock, i, b.ID, res)
			log.Warn("Skipping block", zap.Int("index", i), zap.String("id", b.ID), zap.Strings("problems", res.Errors))
			errs = multierr.Append(errs, err)
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out, errs
}
