package catalog

// DefaultStreams is the built-in catalog used when nothing is stored or the
// stored catalog cannot be read.
func DefaultStreams() []Stream {
	return []Stream{
		{ID: "default-hls-welt", Name: "WeltTV (HLS)", Kind: KindHLS, URL: "https://w-live2weltcms.akamaized.net/hls/live/2041019/Welt-LivePGM/index.m3u8", AutoLoad: true},
		{ID: "default-hls-phoenix", Name: "PhoenixHD (HLS)", Kind: KindHLS, URL: "https://zdf-hls-19.akamaized.net/hls/live/2016502/de/high/master.m3u8"},
		{ID: "default-hls-ntv", Name: "N-TV (HLS)", Kind: KindHLS, URL: "http://hlsntv-i.akamaihd.net/hls/live/218889/ntv/master.m3u8"},
		{ID: "default-yt-bbb", Name: "Big Buck Bunny (YouTube)", Kind: KindYouTube, URL: "https://www.youtube.com/watch?v=aqz-KE-bpKQ"},
		{ID: "default-yt-ed", Name: "Elephants Dream (YouTube)", Kind: KindYouTube, URL: "https://www.youtube.com/watch?v=M7lc1UVf-VE"},
	}
}
