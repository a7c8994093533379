package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"lawrag/lawparse"
	"lawrag/loader/internal"
	"lawrag/model"
	"lawrag/store"
	"lawrag/types"

	"github.com/google/uuid"
)

// Service drives the ingestion pipeline: watch directory -> crop ->
// extract -> parse hierarchy -> chunk -> embed -> persist transactionally.
type Service struct {
	logger   *slog.Logger
	store    store.DBStorer
	watcher  *internal.Watcher
	chunker  *model.Chunker
	embedder model.EmbedderInterface
	cfg      types.Config
}

func New(storer store.DBStorer, chunker *model.Chunker, embedder model.EmbedderInterface, cfg types.Config) *Service {
	return &Service{
		logger:   slog.Default(),
		store:    storer,
		watcher:  internal.NewWatcher(cfg.SourceDir, cfg.ArchiveDir, cfg.BadDir, cfg.MonitoringTime),
		chunker:  chunker,
		embedder: embedder,
		cfg:      cfg,
	}
}

func (s *Service) Stop() {
	s.logger.Info("Loader Service stopped")
}

func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 10)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(fileChan)
		s.watcher.WatchFile(ctx, fileChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.processFiles(ctx, fileChan)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()
	signal.Stop(sigch)
	close(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
}

func (s *Service) processFiles(ctx context.Context, fileChan <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case filePath, ok := <-fileChan:
			if !ok {
				return
			}

			fmt.Printf("Processing file: %s\n", filePath)
			err := s.IngestFile(ctx, filePath, titleFromPath(filePath))
			s.watcher.Release(filePath)

			if ctx.Err() != nil {
				return
			}

			if err != nil {
				fmt.Printf("[INGEST] failed for %s: %v\n", filePath, err)
				s.watcher.MoveToArchive(filePath, true)
				continue
			}
			s.watcher.MoveToArchive(filePath, false)
		}
	}
}

// IngestFile ingests one PDF as one document. Nothing is persisted
// unless the whole hierarchy including embeddings commits.
func (s *Service) IngestFile(ctx context.Context, filePath, title string) error {
	if s.cfg.CropTop > 0 || s.cfg.CropBottom > 0 {
		if err := internal.CropHeaderFooter(filePath, filePath, s.cfg.CropTop, s.cfg.CropBottom); err != nil {
			return err
		}
	}

	raw, err := internal.ExtractText(filePath)
	if err != nil {
		return err
	}

	return s.IngestText(ctx, raw, title, filepath.Base(filePath))
}

// IngestText runs the post-extraction pipeline: normalize, parse the
// 장/조 hierarchy, chunk and embed per article, persist the tree in one
// transaction keyed by the source name.
func (s *Service) IngestText(ctx context.Context, raw, title, sourceName string) error {
	fullText := lawparse.Normalize(raw)
	records := lawparse.SplitToArticles(fullText)
	if len(records) == 0 {
		return fmt.Errorf("no articles parsed from %s", sourceName)
	}
	logDuplicateArticleNos(records)

	docID := documentID(sourceName)
	now := time.Now()
	doc := &types.Document{
		ID:         docID,
		Title:      title,
		SourcePDF:  sourceName,
		EmbedModel: s.embedder.Model(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for _, rec := range records {
		art := types.Article{
			ID:            uuid.New(),
			DocID:         docID,
			ChapterNo:     rec.ChapterNo,
			ChapterTitle:  rec.ChapterTitle,
			MainArticleNo: rec.MainArticleNo,
			SubArticleNo:  rec.SubArticleNo,
			ArticleTitle:  rec.ArticleTitle,
			Text:          rec.Text,
		}

		chunks := s.chunker.ChunkArticle(art.Text, art.MainArticleNo, art.SubArticleNo)

		// One batched embedding call per article.
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed article 제%d조: %w", art.MainArticleNo, err)
		}

		for i := range chunks {
			chunks[i].ID = uuid.New()
			chunks[i].ArticleID = art.ID
			chunks[i].Embedding = vectors[i]
		}
		art.Chunks = chunks
		doc.Articles = append(doc.Articles, art)
	}

	if err := s.store.SaveDocumentTree(ctx, doc); err != nil {
		return err
	}

	chunkCount := 0
	for i := range doc.Articles {
		chunkCount += len(doc.Articles[i].Chunks)
	}
	log.Printf("[INGEST] saved %q: %d articles, %d chunks", doc.Title, len(doc.Articles), chunkCount)
	return nil
}

// logDuplicateArticleNos reports (main, sub) pairs the parser emitted
// more than once. A duplicate means the parser hit an edge case; the
// unique constraint will reject the insert, this log names the culprits.
func logDuplicateArticleNos(records []lawparse.ArticleRecord) {
	seen := make(map[[2]int]int, len(records))
	for _, r := range records {
		seen[[2]int{r.MainArticleNo, r.SubArticleNo}]++
	}
	var dups []string
	for k, n := range seen {
		if n > 1 {
			dups = append(dups, fmt.Sprintf("제%d조(의%d)x%d", k[0], k[1], n))
		}
	}
	if len(dups) > 0 {
		log.Printf("[INGEST] duplicate article numbers: %s", strings.Join(dups, ", "))
	}
}

// documentID derives a stable document id from the source filename, so
// re-ingesting the same source replaces the prior tree instead of
// stacking a second document.
func documentID(sourceName string) uuid.UUID {
	hash := md5.Sum([]byte(sourceName))
	id, _ := uuid.FromBytes(hash[:])
	return id
}

func titleFromPath(filePath string) string {
	fileName := filepath.Base(filePath)
	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		fileName = fileName[:len(fileName)-4]
	}
	fileName = strings.ReplaceAll(fileName, "_", " ")
	fileName = strings.ReplaceAll(fileName, "-", " ")
	return fileName
}
