// Package coords holds the affine transforms used to place content on a page.
// Matrices use PDF operand order [a b c d e f].
package coords

type Matrix [6]float64

func translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Place maps the unit square onto the w×h box whose lower-left corner is at
// (x, y). Image XObjects are drawn through this transform.
func Place(x, y, w, h float64) Matrix { return scale(w, h).multiply(translate(x, y)) }

// multiply returns m followed by o.
func (m Matrix) multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}
