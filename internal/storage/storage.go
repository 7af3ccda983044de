package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	gamePrefix     = "game:"
)

// ErrNotFound is returned when a saved game does not exist.
var ErrNotFound = errors.New("not found")

// GameMode represents the game mode
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsComputer
)

// PlayerColor represents which color the human plays
type PlayerColor int

const (
	ColorWhite PlayerColor = iota
	ColorBlack
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username    string      `json:"username"`
	Difficulty  string      `json:"difficulty"`
	GameMode    GameMode    `json:"game_mode"`
	PlayerColor PlayerColor `json:"player_color"`
	Workers     int         `json:"workers"`
	Colors      bool        `json:"colors"`
	LastPlayed  time.Time   `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:    "Player",
		Difficulty:  "medium",
		GameMode:    ModeHumanVsComputer,
		PlayerColor: ColorWhite,
		Workers:     1,
		Colors:      true,
		LastPlayed:  time.Now(),
	}
}

// GameRecord is a saved game. It keeps the starting notation and the moves
// in coordinate form; replaying them rebuilds the game.
type GameRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartFEN string    `json:"start_fen"`
	Moves    []string  `json:"moves"`
	FEN      string    `json:"fen"`
	Result   string    `json:"result,omitempty"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int           `json:"games_played"`
	Wins           int           `json:"wins"`
	Losses         int           `json:"losses"`
	Draws          int           `json:"draws"`
	TotalPlayTime  time.Duration `json:"total_play_time"`
	LongestWinStrk int           `json:"longest_win_streak"`
	CurrentStreak  int           `json:"current_streak"`
}

// GameResult represents the result of a completed game
type GameResult struct {
	Won      bool
	Draw     bool
	Duration time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the value under key into v. found is false when the key is
// missing.
func (s *Storage) get(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SaveGame stores rec under its ID, keeping the original creation time.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.ID == "" {
		return errors.New("game record has no id")
	}
	key := []byte(gamePrefix + rec.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		now := time.Now()
		item, err := txn.Get(key)
		switch {
		case err == nil:
			var prev GameRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &prev)
			}); err != nil {
				return err
			}
			if !prev.Created.IsZero() {
				rec.Created = prev.Created
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		if rec.Created.IsZero() {
			rec.Created = now
		}
		rec.Updated = now

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadGame returns the game saved under id. A unique ID prefix is accepted.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	found, err := s.get(gamePrefix+id, rec)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	var matches []*GameRecord
	err = s.scanGames(gamePrefix+id, func(r *GameRecord) {
		matches = append(matches, r)
	})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("game id prefix %s matches %d games", id, len(matches))
	}
}

// ListGames returns every saved game, most recently updated first.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var out []*GameRecord
	err := s.scanGames(gamePrefix, func(r *GameRecord) {
		out = append(out, r)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Updated.After(out[j].Updated)
	})
	return out, err
}

func (s *Storage) scanGames(prefix string, fn func(*GameRecord)) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", strings.TrimPrefix(string(it.Item().Key()), gamePrefix), err)
			}
			fn(rec)
		}
		return nil
	})
}

// DeleteGame removes the game saved under id.
func (s *Storage) DeleteGame(id string) error {
	found, err := s.get(gamePrefix+id, &GameRecord{})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(gamePrefix + id))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := &GameStats{}
	_, err := s.get(keyStats, stats)
	return stats, err
}

// RecordResult records a completed game and updates statistics
func (s *Storage) RecordResult(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration

	switch {
	case result.Draw:
		stats.Draws++
		stats.CurrentStreak = 0
	case result.Won:
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}
