package metadata

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
)

func requireSchemaError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema), "got %v", err)
}

func TestDecodeUserData(t *testing.T) {
	data, err := DecodeUserData([]byte(`{
		"checkForm": "tok-1",
		"USER": {"USER_ID": 1234, "BLOG_NAME": "someone", "OPTIONS": {"license_token": "lic-1"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, &UserData{UserID: 1234, Name: "someone", CheckForm: "tok-1", LicenseToken: "lic-1"}, data)
}

func TestDecodeUserDataAnonymous(t *testing.T) {
	data, err := DecodeUserData([]byte(`{"checkForm": "tok-1", "USER": {"USER_ID": "0"}}`))
	require.NoError(t, err)
	assert.Zero(t, data.UserID)
	assert.Empty(t, data.LicenseToken)
}

func TestDecodeUserDataFailsClosed(t *testing.T) {
	cases := map[string]string{
		"no checkForm":     `{"USER": {"USER_ID": 1, "OPTIONS": {"license_token": "x"}}}`,
		"empty checkForm":  `{"checkForm": "", "USER": {"USER_ID": 1, "OPTIONS": {"license_token": "x"}}}`,
		"no user":          `{"checkForm": "tok"}`,
		"no license token": `{"checkForm": "tok", "USER": {"USER_ID": 1, "OPTIONS": {}}}`,
		"bad user id":      `{"checkForm": "tok", "USER": {"USER_ID": "abc"}}`,
		"not an object":    `[]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeUserData([]byte(body))
			requireSchemaError(t, err)
		})
	}
}

func TestDecodeTrackDetails(t *testing.T) {
	details, err := DecodeTrackDetails([]byte(`{"data": [{
		"SNG_ID": "3135553",
		"SNG_TITLE": "One More Time",
		"ART_NAME": "Daft Punk",
		"ALB_TITLE": "Discovery",
		"DURATION": "320",
		"MD5_ORIGIN": "abc123def4567890abc123def4567890",
		"MEDIA_VERSION": "1"
	}]}`))
	require.NoError(t, err)

	assert.Equal(t, &TrackDetails{
		ID:           3135553,
		Title:        "One More Time",
		ArtistName:   "Daft Punk",
		AlbumTitle:   "Discovery",
		Duration:     320,
		MD5Origin:    "abc123def4567890abc123def4567890",
		MediaVersion: 1,
	}, details)
}

func TestDecodeTrackDetailsNumericFields(t *testing.T) {
	details, err := DecodeTrackDetails([]byte(`{"data": [{"SNG_ID": 3135553, "MD5_ORIGIN": "ABC123DEF4567890ABC123DEF4567890", "MEDIA_VERSION": 4}]}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(3135553), details.ID)
	assert.Equal(t, uint64(4), details.MediaVersion)
}

func TestDecodeTrackDetailsFailsClosed(t *testing.T) {
	cases := map[string]string{
		"empty data":          `{"data": []}`,
		"no data":             `{}`,
		"no md5":              `{"data": [{"SNG_ID": "1", "MEDIA_VERSION": "1"}]}`,
		"short md5":           `{"data": [{"SNG_ID": "1", "MD5_ORIGIN": "abc", "MEDIA_VERSION": "1"}]}`,
		"md5 not hex":         `{"data": [{"SNG_ID": "1", "MD5_ORIGIN": "zzz123def4567890abc123def4567890", "MEDIA_VERSION": "1"}]}`,
		"no media version":    `{"data": [{"SNG_ID": "1", "MD5_ORIGIN": "abc123def4567890abc123def4567890"}]}`,
		"bad media version":   `{"data": [{"SNG_ID": "1", "MD5_ORIGIN": "abc123def4567890abc123def4567890", "MEDIA_VERSION": "v1"}]}`,
		"no id":               `{"data": [{"MD5_ORIGIN": "abc123def4567890abc123def4567890", "MEDIA_VERSION": "1"}]}`,
		"media version float": `{"data": [{"SNG_ID": "1", "MD5_ORIGIN": "abc123def4567890abc123def4567890", "MEDIA_VERSION": 1.5}]}`,
		"empty media version": `{"data": [{"SNG_ID": "1", "MD5_ORIGIN": "abc123def4567890abc123def4567890", "MEDIA_VERSION": ""}]}`,
		"empty id":            `{"data": [{"SNG_ID": "", "MD5_ORIGIN": "abc123def4567890abc123def4567890", "MEDIA_VERSION": "1"}]}`,
		"zero id":             `{"data": [{"SNG_ID": "0", "MD5_ORIGIN": "abc123def4567890abc123def4567890", "MEDIA_VERSION": "1"}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTrackDetails([]byte(body))
			requireSchemaError(t, err)
		})
	}
}

const searchResults = `{
	"QUERY": "daft pnk",
	"AUTOCORRECT": true,
	"REVISED_QUERY": "daft punk",
	"TOP_RESULT": [{"ART_ID": "27", "ART_NAME": "Daft Punk", "ART_PICTURE": "f2bc"}],
	"TRACK": {"data": [
		{"SNG_ID": "3135553", "SNG_TITLE": "One More Time", "DURATION": "320",
		 "ARTISTS": [{"ART_ID": "27", "ART_NAME": "Daft Punk"}],
		 "ALB_ID": "302127", "ALB_TITLE": "Discovery", "ART_NAME": "Daft Punk"},
		{"SNG_ID": 3129775, "SNG_TITLE": "Around the World", "ART_ID": 27, "ART_NAME": "Daft Punk"}
	], "total": 2},
	"ARTIST": {"data": [{"ART_ID": "27", "ART_NAME": "Daft Punk"}], "total": 1},
	"ALBUM": {"data": [{"ALB_ID": "302127", "ALB_TITLE": "Discovery", "ART_NAME": "Daft Punk"}], "total": 1},
	"PLAYLIST": {"data": [{"PLAYLIST_ID": "908622995", "TITLE": "Daft Punk Essentials", "NB_SONG": 40}], "total": 1}
}`

func TestDecodeSearch(t *testing.T) {
	result, err := DecodeSearch([]byte(searchResults))
	require.NoError(t, err)

	assert.Equal(t, "daft pnk", result.Query)
	assert.Equal(t, "daft punk", result.Corrected)
	require.NotNil(t, result.Top)
	assert.Equal(t, Artist{ID: 27, Name: "Daft Punk", Picture: "f2bc"}, *result.Top)

	require.Len(t, result.Tracks, 2)
	assert.Equal(t, uint64(3135553), result.Tracks[0].ID)
	assert.Equal(t, 320, result.Tracks[0].Duration)
	assert.Equal(t, []Artist{{ID: 27, Name: "Daft Punk"}}, result.Tracks[0].Artists)
	assert.Equal(t, "Discovery", result.Tracks[0].Album.Title)
	// Inline artist fallback
	assert.Equal(t, []Artist{{ID: 27, Name: "Daft Punk"}}, result.Tracks[1].Artists)

	assert.Len(t, result.Artists, 1)
	assert.Equal(t, []Album{{ID: 302127, Title: "Discovery", ArtistName: "Daft Punk"}}, result.Albums)
	assert.Equal(t, []Playlist{{ID: 908622995, Title: "Daft Punk Essentials", Tracks: 40}}, result.Playlists)
}

func TestDecodeSearchWithoutCorrection(t *testing.T) {
	result, err := DecodeSearch([]byte(`{"QUERY": "x", "AUTOCORRECT": false, "REVISED_QUERY": "y",
		"TOP_RESULT": [], "TRACK": {"data": []}, "ARTIST": {"data": []}}`))
	require.NoError(t, err)
	assert.Empty(t, result.Corrected)
	assert.Nil(t, result.Top)
	assert.Empty(t, result.Tracks)
	assert.Empty(t, result.Albums)
}

func TestDecodeSearchFailsClosed(t *testing.T) {
	cases := map[string]string{
		"no track section":  `{"ARTIST": {"data": []}}`,
		"no artist section": `{"TRACK": {"data": []}}`,
		"track without id":  `{"TRACK": {"data": [{"SNG_TITLE": "x"}]}, "ARTIST": {"data": []}}`,
		"artist bad id":     `{"TRACK": {"data": []}, "ARTIST": {"data": [{"ART_ID": true, "ART_NAME": "x"}]}}`,
		"garbage":           `not json`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSearch([]byte(body))
			requireSchemaError(t, err)
		})
	}
}

func TestDecodeArtistDetails(t *testing.T) {
	details, err := DecodeArtistDetails([]byte(`{
		"DATA": {"ART_ID": "27", "ART_NAME": "Daft Punk"},
		"TOP": {"data": [{"SNG_ID": "3135553", "SNG_TITLE": "One More Time"}]},
		"ALBUMS": {"data": [{"ALB_ID": "302127", "ALB_TITLE": "Discovery"}]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, Artist{ID: 27, Name: "Daft Punk"}, details.Artist)
	require.Len(t, details.TopTracks, 1)
	assert.Equal(t, "One More Time", details.TopTracks[0].Title)
	require.Len(t, details.Albums, 1)
	assert.Equal(t, uint64(302127), details.Albums[0].ID)

	_, err = DecodeArtistDetails([]byte(`{"DATA": {"ART_ID": "27", "ART_NAME": "Daft Punk"}}`))
	requireSchemaError(t, err)
}

func TestDecodeAlbumAndPlaylistDetails(t *testing.T) {
	album, err := DecodeAlbumDetails([]byte(`{
		"DATA": {"ALB_ID": "302127", "ALB_TITLE": "Discovery", "ART_NAME": "Daft Punk"},
		"SONGS": {"data": [{"SNG_ID": "3135553", "SNG_TITLE": "One More Time"}, {"SNG_ID": "3135554", "SNG_TITLE": "Aerodynamic"}]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Discovery", album.Album.Title)
	assert.Len(t, album.Tracks, 2)

	playlist, err := DecodePlaylistDetails([]byte(`{
		"DATA": {"PLAYLIST_ID": 908622995, "TITLE": "Essentials", "NB_SONG": "1"},
		"SONGS": {"data": [{"SNG_ID": "3135553", "SNG_TITLE": "One More Time"}]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, Playlist{ID: 908622995, Title: "Essentials", Tracks: 1}, playlist.Playlist)
	assert.Len(t, playlist.Tracks, 1)

	_, err = DecodeAlbumDetails([]byte(`{"SONGS": {"data": []}}`))
	requireSchemaError(t, err)
	_, err = DecodePlaylistDetails([]byte(`{"DATA": {"TITLE": "no id"}, "SONGS": {"data": []}}`))
	requireSchemaError(t, err)
}

func TestEntitiesDispatchToTheirDecoder(t *testing.T) {
	method, body := Artist{ID: 27}.DetailsQuery()
	assert.Equal(t, "deezer.pageArtist", method)
	assert.Equal(t, "27", body["art_id"])

	method, body = Album{ID: 302127}.DetailsQuery()
	assert.Equal(t, "deezer.pageAlbum", method)
	assert.Equal(t, "302127", body["alb_id"])

	method, body = Playlist{ID: 9}.DetailsQuery()
	assert.Equal(t, "deezer.pagePlaylist", method)
	assert.Equal(t, "9", body["playlist_id"])

	details, err := Album{}.DecodeDetails([]byte(`{"DATA": {"ALB_ID": 1, "ALB_TITLE": "a"}, "SONGS": {"data": []}}`))
	require.NoError(t, err)
	assert.IsType(t, &AlbumDetails{}, details)

	details, err = Artist{}.DecodeDetails([]byte(`{}`))
	assert.Nil(t, details)
	requireSchemaError(t, err)
}
