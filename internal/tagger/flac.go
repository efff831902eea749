package tagger

import (
	"path/filepath"
	"strconv"

	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
)

func (w *WriterImpl) writeFLAC(req *Request) error {
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	comment, commentIndex := extractFLACComment(f)
	if comment == nil {
		comment = flacvorbis.New()
	}

	if err = addFLACTags(comment, req); err != nil {
		return err
	}

	block := comment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if req.Cover != nil {
		picture, picErr := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "", req.Cover, "image/jpeg")
		if picErr == nil {
			pictureMeta := picture.Marshal()
			f.Meta = append(f.Meta, &pictureMeta)
		}
	}

	return f.Save(req.TrackPath)
}

func extractFLACComment(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, int) {
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return comment, idx
		}
	}

	return nil, -1
}

func addFLACTags(comment *flacvorbis.MetaDataBlockVorbisComment, req *Request) error {
	tags := map[string]string{
		"TITLE":       req.Tags.Title,
		"ARTIST":      req.Tags.Artist,
		"ALBUM":       req.Tags.Album,
		"ALBUMARTIST": req.Tags.AlbumArtist,
		"DATE":        req.Tags.Year,
		"GENRE":       req.Tags.Genre,
		"COMMENT":     req.Tags.Comment,
	}

	if req.Tags.TrackNumber > 0 {
		tags["TRACKNUMBER"] = strconv.Itoa(req.Tags.TrackNumber)
	}

	if req.Tags.TrackTotal > 0 {
		tags["TOTALTRACKS"] = strconv.Itoa(req.Tags.TrackTotal)
	}

	if req.Tags.DiscNumber > 0 {
		tags["DISCNUMBER"] = strconv.Itoa(req.Tags.DiscNumber)
	}

	if req.Lyrics != nil && req.Lyrics.Plain != "" {
		tags["LYRICS"] = req.Lyrics.Plain
	}

	for k, v := range tags {
		if v == "" {
			continue
		}

		if err := comment.Add(k, v); err != nil {
			return err
		}
	}

	return nil
}
