package hkdef

import (
	"github.com/cruisechaser/havok_browser/hkx"
)

type HkaAnnotationTrackAnnotation struct {
	Time float32
	Text string
}

type HkaAnnotationTrack struct {
	TrackName   string
	Annotations []*HkaAnnotationTrackAnnotation
}

func init() {
	Registry.Register("hkaAnnotationTrackAnnotation", hkx.AnyVersion,
		func() interface{} { return &HkaAnnotationTrackAnnotation{} },
		hkx.Fields{
			"time": hkx.Float(func(a *HkaAnnotationTrackAnnotation) *float32 { return &a.Time }),
			"text": hkx.String(func(a *HkaAnnotationTrackAnnotation) *string { return &a.Text }),
		})
	Registry.Register("hkaAnnotationTrack", hkx.AnyVersion,
		func() interface{} { return &HkaAnnotationTrack{} },
		hkx.Fields{
			"trackName":   hkx.String(func(a *HkaAnnotationTrack) *string { return &a.TrackName }),
			"annotations": hkx.Refs(func(a *HkaAnnotationTrack) *[]*HkaAnnotationTrackAnnotation { return &a.Annotations }),
		})
}
