package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKind_ShouldRecognizeImageExtensions(t *testing.T) {
	for _, filename := range []string{"cat.jpg", "cat.jpeg", "cat.png", "cat.webp", "CAT.JPG", "photo.PnG"} {
		assert.Equal(t, KindImage, ClassifyKind(filename), filename)
	}
}

func TestClassifyKind_ShouldRecognizeVideoExtensions(t *testing.T) {
	for _, filename := range []string{"clip.mp4", "clip.mov", "clip.avi", "clip.mkv", "clip.webm", "CLIP.MP4"} {
		assert.Equal(t, KindVideo, ClassifyKind(filename), filename)
	}
}

func TestClassifyKind_ShouldLeaveOtherExtensionsUnclassified(t *testing.T) {
	for _, filename := range []string{"notes.txt", "archive.zip", "noextension", "cat.jpg.exe", ".hidden"} {
		assert.Equal(t, Kind(""), ClassifyKind(filename), filename)
	}
}

func TestDerivativeName_ShouldReplaceExtensionPerKind(t *testing.T) {
	assert.Equal(t, "cat.jpg", DerivativeName("cat.jpg", KindImage))
	assert.Equal(t, "photo.jpg", DerivativeName("photo.webp", KindImage))
	assert.Equal(t, "clip.png", DerivativeName("clip.mp4", KindVideo))
	assert.Equal(t, "my.holiday.png", DerivativeName("my.holiday.mov", KindVideo))
}
