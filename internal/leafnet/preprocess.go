package leafnet

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ImageNet channel normalization applied after scaling pixels to [0, 1].
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// preprocess loads the image, resizes it to the model input size, converts
// BGR to RGB, scales to [0, 1], normalizes per channel and lays the result
// out channel-major as a flat float32 tensor.
func (ln *LeafNet) preprocess(imagePath string) ([]float32, error) {
	size := ln.Settings.LeafNet.ImageSize

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("cannot read image %s", imagePath)
	}
	defer img.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	pixels, err := rgb.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("accessing pixel data: %w", err)
	}

	// HWC uint8 -> CHW float32 with per-channel normalization.
	tensor := make([]float32, 3*size*size)
	plane := size * size
	for y := range size {
		for x := range size {
			base := (y*size + x) * 3
			for c := range 3 {
				v := float32(pixels[base+c]) / 255.0
				tensor[c*plane+y*size+x] = (v - channelMean[c]) / channelStd[c]
			}
		}
	}
	return tensor, nil
}

// HSV bounds for plant-colored pixels. OpenCV hue units (0-179).
var (
	greenLower       = gocv.NewScalar(35, 30, 30, 0)
	greenUpper       = gocv.NewScalar(85, 255, 255, 0)
	yellowGreenLower = gocv.NewScalar(20, 30, 30, 0)
	yellowGreenUpper = gocv.NewScalar(35, 255, 255, 0)
)

// greenRatio reloads the original image and measures the fraction of pixels
// inside the green or yellow-green HSV bands.
func (ln *LeafNet) greenRatio(imagePath string) (float64, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return 0, fmt.Errorf("cannot read image %s", imagePath)
	}
	defer img.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	greenMask := gocv.NewMat()
	defer greenMask.Close()
	gocv.InRangeWithScalar(hsv, greenLower, greenUpper, &greenMask)

	yellowMask := gocv.NewMat()
	defer yellowMask.Close()
	gocv.InRangeWithScalar(hsv, yellowGreenLower, yellowGreenUpper, &yellowMask)

	combined := gocv.NewMat()
	defer combined.Close()
	gocv.BitwiseOr(greenMask, yellowMask, &combined)

	total := combined.Rows() * combined.Cols()
	if total == 0 {
		return 0, fmt.Errorf("empty image %s", imagePath)
	}
	return float64(gocv.CountNonZero(combined)) / float64(total), nil
}
