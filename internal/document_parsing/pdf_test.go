package document_parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUploadRejectsEmptyFile(t *testing.T) {
	assert.Error(t, ValidateUpload(nil))
	assert.Error(t, ValidateUpload([]byte{}))
}

func TestValidateUploadRejectsGarbage(t *testing.T) {
	assert.Error(t, ValidateUpload([]byte("this is not a pdf")))
}

func TestRemoveHardcodedImages(t *testing.T) {
	content := "before ![](data:image/png;base64,AAAA) after"
	assert.Equal(t, "before  after", removeHardcodedImages(content))

	// Regular image links survive.
	content = "![](https://example.com/figure.png)"
	assert.Equal(t, content, removeHardcodedImages(content))
}
