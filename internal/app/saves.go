package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gogb/internal/cartridge"
)

// saveFormatVersion is written to every metadata file
const saveFormatVersion = "1.0"

// ErrSaveMismatch is returned when a save file belongs to a different program image
var ErrSaveMismatch = errors.New("save file does not match cartridge")

// SaveManager persists battery-backed cartridge RAM between sessions. Each
// image gets a raw <name>.sav dump plus a <name>.sav.json metadata file.
type SaveManager struct {
	saveDirectory string
	initialized   bool
	logger        *log.Logger
}

// SaveMetadata describes a battery save on disk
type SaveMetadata struct {
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	ROMPath     string    `json:"rom_path"`
	ROMChecksum string    `json:"rom_checksum"`
	Title       string    `json:"title"`
	Size        int       `json:"size"`
}

// SaveInfo contains information about the save file of one image
type SaveInfo struct {
	Exists    bool
	FilePath  string
	FileSize  int64
	Timestamp time.Time
	Title     string
}

// NewSaveManager creates a save manager writing into saveDirectory
func NewSaveManager(saveDirectory string) *SaveManager {
	manager := &SaveManager{
		saveDirectory: saveDirectory,
		logger:        log.Default(),
	}

	if err := manager.initialize(); err != nil {
		manager.logger.Printf("[SAVE] Save manager initialization failed: %v", err)
	}

	return manager
}

func (sm *SaveManager) initialize() error {
	if err := os.MkdirAll(sm.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	sm.initialized = true
	return nil
}

// SetLogger replaces the logger
func (sm *SaveManager) SetLogger(logger *log.Logger) {
	sm.logger = logger
}

// Save writes the cartridge RAM for romPath. Cartridges without a battery
// or without RAM are skipped and report false.
func (sm *SaveManager) Save(cart cartridge.Cartridge, romPath string) (bool, error) {
	if !sm.initialized {
		return false, fmt.Errorf("save manager not initialized")
	}
	if cart == nil {
		return false, fmt.Errorf("cartridge cannot be nil")
	}

	header := cart.Header()
	if !header.HasBattery {
		return false, nil
	}
	data := cart.Save()
	if data == nil {
		return false, nil
	}

	filePath := sm.SavePath(romPath)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write save file: %w", err)
	}

	metadata := SaveMetadata{
		Version:     saveFormatVersion,
		Timestamp:   time.Now(),
		ROMPath:     romPath,
		ROMChecksum: calculateROMChecksum(romPath),
		Title:       header.Title,
		Size:        len(data),
	}
	if err := sm.saveMetadata(&metadata, metadataPath(filePath)); err != nil {
		return false, err
	}

	sm.logger.Printf("[SAVE] Wrote %d bytes of cartridge RAM to %s", len(data), filePath)
	return true, nil
}

// Load restores the cartridge RAM for romPath. A missing save file is not
// an error and reports false.
func (sm *SaveManager) Load(cart cartridge.Cartridge, romPath string) (bool, error) {
	if !sm.initialized {
		return false, fmt.Errorf("save manager not initialized")
	}
	if cart == nil {
		return false, fmt.Errorf("cartridge cannot be nil")
	}

	header := cart.Header()
	if !header.HasBattery || cart.Save() == nil {
		return false, nil
	}

	filePath := sm.SavePath(romPath)
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read save file: %w", err)
	}

	// Metadata is optional so plain .sav files from elsewhere still load
	if metadata, err := sm.loadMetadata(metadataPath(filePath)); err == nil {
		if err := validateMetadata(metadata, header, romPath); err != nil {
			return false, err
		}
	} else if !os.IsNotExist(err) {
		sm.logger.Printf("[SAVE] Ignoring unreadable metadata for %s: %v", filePath, err)
	}

	if err := cart.Load(data); err != nil {
		return false, fmt.Errorf("failed to restore cartridge RAM: %w", err)
	}

	sm.logger.Printf("[SAVE] Restored %d bytes of cartridge RAM from %s", len(data), filePath)
	return true, nil
}

// validateMetadata checks that a save was written for this image
func validateMetadata(metadata *SaveMetadata, header *cartridge.Header, romPath string) error {
	if metadata.Version == "" {
		return fmt.Errorf("%w: missing version information", ErrSaveMismatch)
	}
	if metadata.Title != header.Title {
		return fmt.Errorf("%w: saved for %q, loaded %q", ErrSaveMismatch, metadata.Title, header.Title)
	}
	checksum := calculateROMChecksum(romPath)
	if metadata.ROMChecksum != "" && checksum != "" && metadata.ROMChecksum != checksum {
		return fmt.Errorf("%w: image checksum changed", ErrSaveMismatch)
	}
	return nil
}

func (sm *SaveManager) saveMetadata(metadata *SaveMetadata, filePath string) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal save metadata: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write save metadata: %w", err)
	}

	return nil
}

func (sm *SaveManager) loadMetadata(filePath string) (*SaveMetadata, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var metadata SaveMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save metadata: %w", err)
	}

	return &metadata, nil
}

// SavePath returns the save file path for romPath
func (sm *SaveManager) SavePath(romPath string) string {
	romName := filepath.Base(romPath)
	romNameWithoutExt := strings.TrimSuffix(romName, filepath.Ext(romName))
	return filepath.Join(sm.saveDirectory, romNameWithoutExt+".sav")
}

func metadataPath(savePath string) string {
	return savePath + ".json"
}

// calculateROMChecksum hashes the image file; an unreadable file yields ""
func calculateROMChecksum(romPath string) string {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetSaveInfo returns information about the save file for romPath
func (sm *SaveManager) GetSaveInfo(romPath string) SaveInfo {
	filePath := sm.SavePath(romPath)
	info := SaveInfo{FilePath: filePath}

	stat, err := os.Stat(filePath)
	if err != nil {
		return info
	}

	info.Exists = true
	info.FileSize = stat.Size()
	info.Timestamp = stat.ModTime()

	if metadata, err := sm.loadMetadata(metadataPath(filePath)); err == nil {
		info.Timestamp = metadata.Timestamp
		info.Title = metadata.Title
	}

	return info
}

// HasSave checks if a save file exists for romPath
func (sm *SaveManager) HasSave(romPath string) bool {
	_, err := os.Stat(sm.SavePath(romPath))
	return err == nil
}

// Delete removes the save file and its metadata for romPath
func (sm *SaveManager) Delete(romPath string) error {
	filePath := sm.SavePath(romPath)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("no save file for %s", filepath.Base(romPath))
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	if err := os.Remove(metadataPath(filePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save metadata: %w", err)
	}

	return nil
}

// Cleanup releases save manager resources
func (sm *SaveManager) Cleanup() error {
	sm.initialized = false
	return nil
}
