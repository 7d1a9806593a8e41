package camera

import (
	"image"

	"gocv.io/x/gocv"
)

// enhance applies white balance, CLAHE contrast equalization on the Lab
// lightness channel and a mild unsharp mask. Returns a new Mat owned by the
// caller.
func enhance(input gocv.Mat) gocv.Mat {
	balanced := whiteBalance(input)

	// CLAHE on L channel in Lab space.
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(balanced, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	clahe.Apply(channels[0], &channels[0])
	clahe.Close()
	gocv.Merge(channels, &lab)
	for i := range channels {
		channels[i].Close()
	}
	gocv.CvtColor(lab, &balanced, gocv.ColorLabToBGR)

	// Unsharp mask.
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(balanced, &blurred, image.Pt(0, 0), 3, 3, gocv.BorderDefault)
	gocv.AddWeighted(balanced, 1.5, blurred, -0.5, 0, &balanced)

	return balanced
}

// whiteBalance scales each channel toward mid-gray.
func whiteBalance(input gocv.Mat) gocv.Mat {
	channels := gocv.Split(input)
	for i := range channels {
		mean := channels[i].Mean()
		if mean.Val1 > 0 {
			channels[i].MultiplyFloat(float32(128.0 / mean.Val1))
		}
	}
	out := gocv.NewMat()
	gocv.Merge(channels, &out)
	for i := range channels {
		channels[i].Close()
	}
	return out
}
