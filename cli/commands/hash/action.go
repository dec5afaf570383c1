package hash

import (
	"context"
	"fmt"

	"github.com/gruntwork-io/assetflow/cli/commands/common"
	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

func Run(ctx context.Context, l log.Logger, opts *options.AssetflowOptions, key string) error {
	flags, err := ParseFlags(opts.HashFlags)
	if err != nil {
		return err
	}

	env, err := common.Load(ctx, l, opts)
	if err != nil {
		return err
	}

	item, err := find(env.Session, key)
	if err != nil {
		return err
	}

	l.Debugf("Hashing %s/%s with %s", item.Package, item.Location, flags)

	objectID, err := hashing.ComputeHash(item.Asset, flags, hashing.WithExternalResolver(env.Session.IsExternal(item.ID())))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(opts.Writer, objectID); err != nil {
		return errors.New(err)
	}

	return nil
}

// ParseFlags combines the named clone flags.
func ParseFlags(names []string) (hashing.Flags, error) {
	var flags hashing.Flags

	for _, name := range names {
		flag, err := hashing.ParseFlag(name)
		if err != nil {
			return 0, errors.New(err)
		}

		flags |= flag
	}

	return flags, nil
}

func find(sess *session.Session, key string) (*asset.Item, error) {
	if id, err := asset.ParseID(key); err == nil {
		if item, ok := sess.FindByID(id); ok {
			return item, nil
		}

		return nil, errors.New(session.AssetNotFoundError{Key: key})
	}

	return sess.FindByLocation(key)
}
