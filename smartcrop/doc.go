/*
Package smartcrop plans a horizontal crop window for a clip from its face
tracks.

The planner samples the tracks at a fixed interval, picks the face to follow
with switch hysteresis, merges the samples into segments, fills the gaps
between them and limits how fast the crop center may move.  Audio energy
frames, when supplied, let a visibly talking face win over a larger silent
one.
*/
package smartcrop
