package metadata

import "strconv"

const kPageLanguage = "en"

func (a Artist) DetailsQuery() (string, map[string]interface{}) {
	return "deezer.pageArtist", map[string]interface{}{
		"art_id": strconv.FormatUint(a.ID, 10),
		"lang":   kPageLanguage,
		"tab":    0,
	}
}

func (a Artist) DecodeDetails(results []byte) (Details, error) {
	d, err := DecodeArtistDetails(results)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (a Album) DetailsQuery() (string, map[string]interface{}) {
	return "deezer.pageAlbum", map[string]interface{}{
		"alb_id": strconv.FormatUint(a.ID, 10),
		"lang":   kPageLanguage,
		"header": true,
		"tab":    0,
	}
}

func (a Album) DecodeDetails(results []byte) (Details, error) {
	d, err := DecodeAlbumDetails(results)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (p Playlist) DetailsQuery() (string, map[string]interface{}) {
	return "deezer.pagePlaylist", map[string]interface{}{
		"playlist_id": strconv.FormatUint(p.ID, 10),
		"lang":        kPageLanguage,
		"nb":          2000,
		"start":       0,
		"tab":         0,
		"tags":        true,
		"header":      true,
	}
}

func (p Playlist) DecodeDetails(results []byte) (Details, error) {
	d, err := DecodePlaylistDetails(results)
	if err != nil {
		return nil, err
	}
	return d, nil
}
