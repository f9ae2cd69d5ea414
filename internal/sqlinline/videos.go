package sqlinline

const QSelectVideoByYouTubeID = `--sql 3b0f6f0e-2c1d-4a8e-9f57-6d1c2b7a9e41
select youtube_id, ai_title, created_at
from videos
where youtube_id = $1::text
limit 1;
`

// QInsertVideo fails with a unique violation when the id already exists;
// callers rely on that to detect concurrent first-time requests.
const QInsertVideo = `--sql 9c4d2e71-5a3b-4f60-8e19-0b7a6c5d4e32
insert into videos (youtube_id, ai_title, created_at)
values ($1::text, $2::text, now())
returning youtube_id, ai_title, created_at;
`
