package consts

const (
	UA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// TIME_FORMAT is the XMLTV timestamp layout. The offset is always +0700.
	TIME_FORMAT = "20060102150405 -0700"

	HANOI_SCHEDULE_URL = "https://hanoionline.vn/api/Schedule/listschedule/"

	VOH_URL        = "https://voh.com.vn"
	VOH_BUILD_PAGE = "https://voh.com.vn/radio/lich-phat-song-fm-999-02221123001000999.html"

	VOVGT_SCHEDULE_URL = "https://vovgiaothong.vn/api/schedule"

	OUTPUT_FILE = "schedule/vietnam.xml"
	CONFIG_FILE = "sources.yaml"
)
