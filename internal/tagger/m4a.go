package tagger

import mp4tag "github.com/Sorrow446/go-mp4tag"

func (w *WriterImpl) writeM4A(req *Request) error {
	tags := &mp4tag.MP4Tags{
		Title:       strPtr(req.Tags.Title),
		Artist:      strPtr(req.Tags.Artist),
		Album:       strPtr(req.Tags.Album),
		AlbumArtist: strPtr(req.Tags.AlbumArtist),
		Genre:       strPtr(req.Tags.Genre),
		Year:        strPtr(req.Tags.Year),
		Comment:     strPtr(req.Tags.Comment),
	}

	if req.Tags.TrackNumber > 0 {
		tags.Track = [2]uint16{uint16(req.Tags.TrackNumber), uint16(req.Tags.TrackTotal)} //nolint:gosec // track numbers fit uint16.
	}

	if req.Tags.DiscNumber > 0 {
		tags.Disk = [2]uint16{uint16(req.Tags.DiscNumber), 0} //nolint:gosec // disc numbers fit uint16.
	}

	if req.Cover != nil {
		tags.Cover = req.Cover
		tags.CoverType = mp4tag.ImageTypeJpeg
	}

	if req.Lyrics != nil && req.Lyrics.Plain != "" {
		tags.Lyrics = strPtr(req.Lyrics.Plain)
	}

	tagger := &mp4tag.MP4Tag{Path: req.TrackPath}

	return tagger.Write(tags, nil)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
