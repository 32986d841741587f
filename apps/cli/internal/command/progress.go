package command

import (
	"context"
	"io"

	"github.com/cheggaaa/pb/v3"

	"github.com/tilsley/repotext/pkg/ingest"
)

// Archive size is unknown up front, so the bar shows a byte counter and speed.
const progressTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{speed . }} {{etime . }}`

// progressFetcher draws a byte counter on out while the archive streams.
type progressFetcher struct {
	next ingest.ArchiveFetcher
	out  io.Writer
}

// Fetch implements ingest.ArchiveFetcher. The bar finishes when the service
// closes the body.
func (p *progressFetcher) Fetch(ctx context.Context, owner, repo, branch string) (io.ReadCloser, error) {
	body, err := p.next.Fetch(ctx, owner, repo, branch)
	if err != nil || body == nil {
		return body, err
	}

	bar := progressTemplate.New(0).
		SetWriter(p.out).
		Set(pb.Bytes, true).
		Set("prefix", owner+"/"+repo+"@"+branch+" ")
	bar.Start()
	return bar.NewProxyReader(body), nil
}
