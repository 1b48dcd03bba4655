package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"time"

	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
)

// Load reads a flow document from path.
func Load(ctx context.Context, path string) (graph.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	doc, err := graph.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = xerrors.Wrap(xerrors.ErrCodeFileNotFound, err, "flow file %s not found", path)
		} else {
			err = xerrors.Wrap(xerrors.ErrCodeInvalidDocument, err, "read flow %s", path)
		}
	}
	hooks.OnLoadComplete(ctx, path, len(doc.Nodes), time.Since(start), err)
	return doc, err
}

// Check validates doc and returns its dangling edges. Dangling edges are an
// error only in strict mode.
func Check(doc graph.Document, opts Options) (dangling []string, err error) {
	if err := graph.Validate(doc, graph.ValidateOptions{Strict: opts.Strict}); err != nil {
		return nil, err
	}
	for _, e := range doc.DanglingEdges() {
		dangling = append(dangling, e.ID)
	}
	return dangling, nil
}
