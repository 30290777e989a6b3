/*
go-facetrack follows faces through short video clips and plans a horizontal
crop that keeps the active speaker in frame.

Faces are found on sampled frames with OpenCV's YuNet detector via gocv and
an optional landmark model scores mouth openness.  The tracker package links
detections into per face timelines with a greedy gated matcher, and the
smartcrop package turns those timelines plus audio energy into a list of crop
segments.

See the facetrack command under cmd/ and the streaming demo in the example
subdirectory.
*/
package facetrack
