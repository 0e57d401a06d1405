package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"gameplex/internal/http-api/models"
	"gameplex/internal/ingestion/assets"
	"gameplex/internal/ingestion/rawg"

	"gorm.io/gorm"
)

// MetadataProvider is the external catalog contract the scanner consumes.
// Any failure is treated as "no data for this folder"; the scan moves on.
type MetadataProvider interface {
	Lookup(ctx context.Context, term string) (*rawg.GameDetails, error)
}

// ErrNoMetadataMatch reports a search term the metadata service has no
// record for.
var ErrNoMetadataMatch = errors.New("no metadata match")

// Report summarises one scan run.
type Report struct {
	FoldersProcessed int `json:"foldersProcessed"`
	FoldersSkipped   int `json:"foldersSkipped"`
}

// Scanner reconciles the game library tree against the catalog. Re-running
// it over an unchanged tree is a no-op: known folder names are skipped.
type Scanner struct {
	db             *gorm.DB
	meta           MetadataProvider
	cache          *assets.Cache
	libraryRoot    string
	maxScreenshots int
	logger         *slog.Logger
}

func NewScanner(db *gorm.DB, meta MetadataProvider, cache *assets.Cache, libraryRoot string, maxScreenshots int, logger *slog.Logger) *Scanner {
	return &Scanner{
		db:             db,
		meta:           meta,
		cache:          cache,
		libraryRoot:    libraryRoot,
		maxScreenshots: maxScreenshots,
		logger:         logger,
	}
}

// Scan walks the immediate subdirectories of the library root and ingests
// every folder the catalog does not know yet. Per-folder failures are
// recoverable; only an unreadable root is fatal.
func (s *Scanner) Scan(ctx context.Context) (Report, error) {
	var report Report

	entries, err := os.ReadDir(s.libraryRoot)
	if err != nil {
		return report, fmt.Errorf("read library root %s: %w", s.libraryRoot, err)
	}

	s.logger.Info("starting library scan", "root", s.libraryRoot)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := entry.Name()

		known, err := s.folderKnown(ctx, folder)
		if err != nil {
			return report, fmt.Errorf("check folder %s: %w", folder, err)
		}
		if known {
			s.logger.Debug("skipping known folder", "folder", folder)
			report.FoldersSkipped++
			continue
		}

		if err := s.ingestFolder(ctx, folder); err != nil {
			s.logger.Warn("folder skipped", "folder", folder, "reason", err)
			report.FoldersSkipped++
			continue
		}
		report.FoldersProcessed++
	}

	s.logger.Info("library scan complete",
		"processed", report.FoldersProcessed,
		"skipped", report.FoldersSkipped,
	)
	return report, nil
}

func (s *Scanner) folderKnown(ctx context.Context, folder string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).
		Where("folder_name = ?", folder).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ingestFolder fetches metadata, mirrors artwork and commits catalog rows for
// one new folder. The catalog writes are all-or-nothing in one transaction;
// artwork downloads are best-effort and happen before the transaction.
func (s *Scanner) ingestFolder(ctx context.Context, folder string) error {
	details, err := s.meta.Lookup(ctx, searchTerm(folder))
	if err != nil {
		return fmt.Errorf("metadata lookup: %w", err)
	}
	if details == nil {
		return ErrNoMetadataMatch
	}

	if err := s.cache.EnsureDirs(folder); err != nil {
		return err
	}

	game := buildGame(folder, details)

	posterPath, screenshotPaths := s.mirrorArtwork(ctx, folder, details)
	game.ArtPath = posterPath

	installFiles, err := s.listInstallFiles(folder)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return fmt.Errorf("create game: %w", err)
		}

		for _, name := range genreNames(details) {
			genre := models.Genre{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&genre).Error; err != nil {
				return fmt.Errorf("create genre %s: %w", name, err)
			}
			if err := tx.Model(game).Association("Genres").Append(&genre); err != nil {
				return fmt.Errorf("associate genre %s: %w", name, err)
			}
		}

		for _, path := range screenshotPaths {
			shot := models.Screenshot{GameID: game.ID, Path: path}
			if err := tx.Create(&shot).Error; err != nil {
				return fmt.Errorf("create screenshot: %w", err)
			}
		}

		for _, filename := range installFiles {
			file := models.InstallFile{GameID: game.ID, Filename: filename}
			if err := tx.Create(&file).Error; err != nil {
				return fmt.Errorf("create install file: %w", err)
			}
		}

		s.logger.Info("game added to catalog", "folder", folder, "title", game.Title)
		return nil
	})
}

// mirrorArtwork caches the poster and up to maxScreenshots screenshots,
// returning the web paths that made it to disk. Failures are logged, never
// fatal.
func (s *Scanner) mirrorArtwork(ctx context.Context, folder string, details *rawg.GameDetails) (*string, []string) {
	var posterPath *string
	poster := s.cache.MirrorPoster(ctx, folder, details.BackgroundImage)
	if poster.Skipped {
		s.logger.Warn("poster not cached", "folder", folder, "reason", poster.Reason)
	} else {
		posterPath = &poster.Path
	}

	shots := details.Screenshots
	if len(shots) > s.maxScreenshots {
		shots = shots[:s.maxScreenshots]
	}
	screenshotPaths := make([]string, 0, len(shots))
	for i, shotURL := range shots {
		result := s.cache.MirrorScreenshot(ctx, folder, shotURL, i+1)
		if result.Skipped {
			s.logger.Warn("screenshot not cached", "folder", folder, "index", i+1, "reason", result.Reason)
			continue
		}
		screenshotPaths = append(screenshotPaths, result.Path)
	}
	return posterPath, screenshotPaths
}

// Rescan re-resolves an already catalogued game against the metadata service
// under a corrected title, replacing its descriptive fields, genres,
// screenshots and install file listing in place. The folder name and user
// data are untouched.
func (s *Scanner) Rescan(ctx context.Context, gameID int64, newTitle string) error {
	details, err := s.meta.Lookup(ctx, newTitle)
	if err != nil {
		return fmt.Errorf("metadata lookup: %w", err)
	}
	if details == nil {
		return ErrNoMetadataMatch
	}

	var game models.Game
	if err := s.db.WithContext(ctx).First(&game, gameID).Error; err != nil {
		return err
	}
	folder := game.FolderName

	if err := s.cache.EnsureDirs(folder); err != nil {
		return err
	}

	posterPath, screenshotPaths := s.mirrorArtwork(ctx, folder, details)

	installFiles, err := s.listInstallFiles(folder)
	if err != nil {
		return err
	}

	refreshed := buildGame(folder, details)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"title":        refreshed.Title,
			"rawg_id":      refreshed.RawgID,
			"developer":    refreshed.Developer,
			"release_date": refreshed.ReleaseDate,
			"description":  refreshed.Description,
			"rating":       refreshed.Rating,
		}
		if posterPath != nil {
			fields["art_path"] = *posterPath
		}
		if err := tx.Model(&models.Game{}).Where("id = ?", gameID).Updates(fields).Error; err != nil {
			return fmt.Errorf("update game: %w", err)
		}

		if err := tx.Model(&game).Association("Genres").Clear(); err != nil {
			return fmt.Errorf("clear genres: %w", err)
		}
		for _, name := range genreNames(details) {
			genre := models.Genre{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&genre).Error; err != nil {
				return fmt.Errorf("create genre %s: %w", name, err)
			}
			if err := tx.Model(&game).Association("Genres").Append(&genre); err != nil {
				return fmt.Errorf("associate genre %s: %w", name, err)
			}
		}

		if err := tx.Where("game_id = ?", gameID).Delete(&models.Screenshot{}).Error; err != nil {
			return fmt.Errorf("delete screenshots: %w", err)
		}
		for _, path := range screenshotPaths {
			shot := models.Screenshot{GameID: gameID, Path: path}
			if err := tx.Create(&shot).Error; err != nil {
				return fmt.Errorf("create screenshot: %w", err)
			}
		}

		if err := tx.Where("game_id = ?", gameID).Delete(&models.InstallFile{}).Error; err != nil {
			return fmt.Errorf("delete install files: %w", err)
		}
		for _, filename := range installFiles {
			file := models.InstallFile{GameID: gameID, Filename: filename}
			if err := tx.Create(&file).Error; err != nil {
				return fmt.Errorf("create install file: %w", err)
			}
		}

		s.logger.Info("game rescanned", "id", gameID, "title", refreshed.Title)
		return nil
	})
}

func (s *Scanner) listInstallFiles(folder string) ([]string, error) {
	installDir := filepath.Join(s.libraryRoot, folder, "install")
	entries, err := os.ReadDir(installDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read install dir %s: %w", installDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

func buildGame(folder string, details *rawg.GameDetails) *models.Game {
	game := &models.Game{
		Title:      details.Name,
		FolderName: folder,
	}
	if details.ID != 0 {
		id := details.ID
		game.RawgID = &id
	}
	if dev := joinNames(details.Developers); dev != "" {
		game.Developer = &dev
	}
	if details.Released != "" {
		released := details.Released
		game.ReleaseDate = &released
	}
	if details.DescriptionRaw != "" {
		desc := details.DescriptionRaw
		game.Description = &desc
	}
	if details.Rating != 0 {
		rating := details.Rating
		game.Rating = &rating
	}
	return game
}

func genreNames(details *rawg.GameDetails) []string {
	names := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

func joinNames(refs []rawg.NamedRef) string {
	out := ""
	for _, r := range refs {
		if r.Name == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += r.Name
	}
	return out
}

// searchTerm derives the metadata search term from a folder name. Folder
// names may be URL-encoded on disk; decode when possible.
func searchTerm(folder string) string {
	if term, err := url.QueryUnescape(folder); err == nil {
		return term
	}
	return folder
}
