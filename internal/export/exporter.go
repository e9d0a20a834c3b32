package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/larkwiot/bookexplorer/internal/logger"
	"github.com/larkwiot/bookexplorer/internal/providers"
	"github.com/larkwiot/bookexplorer/internal/util"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const maxThreads = 64

type Options struct {
	// Threads bounds concurrent lookups; zero picks a count from the CPU count.
	Threads int
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
}

type Report struct {
	Queries int
	Found   int
	Empty   int
	Failed  int
}

type Exporter struct {
	provider providers.Provider
	threads  int
	progress io.Writer
}

type entry struct {
	Query   string
	Outcome providers.Outcome
}

type failure struct {
	Error string `json:"error"`
}

func NewExporter(provider providers.Provider, opts Options) *Exporter {
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads > maxThreads {
		threads = maxThreads
	}

	return &Exporter{
		provider: provider,
		threads:  threads,
		progress: opts.Progress,
	}
}

// ReadQueries reads one query per line, skipping blank lines, # comments and
// repeated queries.
func ReadQueries(r io.Reader) ([]string, error) {
	queries := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return lo.Uniq(queries), nil
}

func makeItem(e entry) (util.JsonStreamWriterItem, error) {
	var data []byte
	var err error

	books, lookupErr := e.Outcome.Get()
	if lookupErr != nil {
		data, err = json.Marshal(failure{Error: lookupErr.Error()})
	} else {
		data, err = json.Marshal(books)
	}
	if err != nil {
		return util.JsonStreamWriterItem{}, err
	}

	return util.JsonStreamWriterItem{Key: e.Query, Data: data}, nil
}

// Run looks up every query and streams a JSON object keyed by query to out.
func (ex *Exporter) Run(ctx context.Context, queries []string, out io.Writer) (Report, error) {
	queries = lo.Filter(queries, func(q string, _ int) bool { return strings.TrimSpace(q) != "" })
	report := Report{Queries: len(queries)}

	outputWriter, err := util.NewJsonStreamWriter[entry](out, makeItem)
	if err != nil {
		return report, fmt.Errorf("opening output: %w", err)
	}

	logrus.Infof("exporter: looking up %d queries with %d threads", len(queries), ex.threads)

	var pb *progressbar.ProgressBar
	if ex.progress != nil {
		pb = progressbar.NewOptions(
			len(queries),
			progressbar.OptionSetWriter(ex.progress),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionSetDescription("searching"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionShowIts(),
		)
	}

	var found, empty, failed atomic.Int64
	var pbLock sync.Mutex
	pool := util.NewThreadPool(ex.threads)

	for i, query := range queries {
		if ctx.Err() != nil {
			logrus.Warnf("exporter: stopping early: %v", ctx.Err())
			break
		}

		searchCtx := logger.ContextWithSearchID(ctx, uint64(i+1))
		pool.Go(func() {
			query := strings.TrimSpace(query)
			outcome := ex.provider.Lookup(searchCtx, query)

			switch books, err := outcome.Get(); {
			case err != nil:
				failed.Add(1)
			case len(books) == 0:
				empty.Add(1)
			default:
				found.Add(1)
			}

			outputWriter.WriteObject(entry{Query: query, Outcome: outcome})

			if pb != nil {
				pbLock.Lock()
				_ = pb.Add(1)
				pbLock.Unlock()
			}
		})
	}

	pool.Wait()

	if pb != nil {
		_ = pb.Close()
	}

	report.Found = int(found.Load())
	report.Empty = int(empty.Load())
	report.Failed = int(failed.Load())

	if err := outputWriter.Close(); err != nil {
		return report, fmt.Errorf("writing output: %w", err)
	}

	logrus.Infof("exporter: done, %d found, %d empty, %d failed", report.Found, report.Empty, report.Failed)
	return report, ctx.Err()
}
