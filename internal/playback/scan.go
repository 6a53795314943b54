package playback

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Extensions whose MIME type the platform table may not know.
var audioExts = map[string]struct{}{
	".mp3":  {},
	".ogg":  {},
	".oga":  {},
	".flac": {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".opus": {},
	".wma":  {},
}

// ScanFolder walks the folder recursively and collects audio files. The
// walk is bounded by depth and by total file count so a pathological tree
// cannot stall playback indefinitely.
func ScanFolder(dir string, maxDepth, maxFiles int) ([]string, error) {
	var files []string
	err := scanDir(dir, 0, maxDepth, maxFiles, &files)
	if err != nil {
		return nil, err
	}
	return files, nil
}

func scanDir(dir string, depth, maxDepth, maxFiles int, files *[]string) error {
	if depth > maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if depth == 0 {
			return err
		}
		// Unreadable subfolder: keep whatever the rest of the walk finds.
		return nil
	}

	for _, e := range entries {
		if len(*files) >= maxFiles {
			return nil
		}
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := scanDir(path, depth+1, maxDepth, maxFiles, files); err != nil {
				return err
			}
			continue
		}
		if isAudioFile(e.Name()) {
			*files = append(*files, path)
		}
	}

	return nil
}

func isAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	if _, ok := audioExts[ext]; ok {
		return true
	}
	return strings.HasPrefix(mime.TypeByExtension(ext), "audio/")
}
