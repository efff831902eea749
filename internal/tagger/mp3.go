package tagger

import (
	"context"
	"strconv"
	"strings"

	"github.com/oshokin/id3v2/v2"

	"github.com/nmartins/melodysync/internal/logger"
)

func (w *WriterImpl) writeMP3(ctx context.Context, req *Request) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close() //nolint:errcheck // Error on close is not critical here.

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetAlbum(req.Tags.Album)
	tag.SetArtist(req.Tags.Artist)
	tag.SetGenre(req.Tags.Genre)
	tag.SetTitle(req.Tags.Title)
	tag.SetYear(req.Tags.Year)

	if req.Tags.TrackNumber > 0 {
		trackFrame := strconv.Itoa(req.Tags.TrackNumber)
		if req.Tags.TrackTotal > 0 {
			trackFrame += "/" + strconv.Itoa(req.Tags.TrackTotal)
		}

		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), trackFrame)
	}

	if req.Tags.DiscNumber > 0 {
		tag.AddTextFrame(
			tag.CommonID("Part of a set"), tag.DefaultEncoding(), strconv.Itoa(req.Tags.DiscNumber))
	}

	tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), req.Tags.AlbumArtist)

	if req.Tags.Comment != "" {
		//nolint:exhaustruct // Description field intentionally empty for plain comments.
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    id3v2.EnglishISO6392Code,
			Description: "",
			Text:        req.Tags.Comment,
		})
	}

	if req.Cover != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Picture:     req.Cover,
		})
	}

	w.addMP3Lyrics(ctx, tag, req.Lyrics)

	return tag.Save()
}

func (w *WriterImpl) addMP3Lyrics(ctx context.Context, tag *id3v2.Tag, lyrics *Lyrics) {
	if lyrics == nil {
		return
	}

	if synced := strings.TrimSpace(lyrics.Synced); synced != "" {
		result, err := id3v2.ParseLRCFile(strings.NewReader(synced))
		if err != nil {
			logger.Errorf(ctx, "failed to parse synced lyrics, falling back to plain: %v", err)
		} else {
			tag.AddSynchronisedLyricsFrame(id3v2.SynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          id3v2.EnglishISO6392Code,
				TimestampFormat:   id3v2.SYLTAbsoluteMillisecondsTimestampFormat,
				ContentType:       id3v2.SYLTLyricsContentType,
				ContentDescriptor: "Lyrics",
				SynchronizedTexts: result.SynchronizedTexts,
			})

			return
		}
	}

	if plain := strings.TrimSpace(lyrics.Plain); plain != "" {
		//nolint:exhaustruct // ContentDescriptor not available in source data.
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: id3v2.EnglishISO6392Code,
			Lyrics:   plain,
		})
	}
}
