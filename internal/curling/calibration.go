package curling

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Coefficients is one regime's fitted curve set. The values are empirical
// calibration data; they are carried verbatim and never derived in code.
type Coefficients struct {
	// C0 is a polynomial in r, highest power first.
	C0 []float64 `yaml:"c0"`
	// C1 is -a*ln(r+b)+c, stored as [a, b, c].
	C1 [3]float64 `yaml:"c1"`
	// C2 is k*r+m, stored as [k, m].
	C2 [2]float64 `yaml:"c2"`
}

func (c Coefficients) c0(r float64) float64 {
	var acc float64
	for _, coef := range c.C0 {
		acc = acc*r + coef
	}
	return acc
}

func (c Coefficients) c1(r float64) float64 {
	return -c.C1[0]*math.Log(r+c.C1[1]) + c.C1[2]
}

func (c Coefficients) c2(r float64) float64 {
	return c.C2[0]*r + c.C2[1]
}

// Regime applies to desired speeds up to and including MaxSpeed, above the
// previous regime's bound.
type Regime struct {
	MaxSpeed     float64 `yaml:"max_speed"`
	Coefficients `yaml:",inline"`
}

// FixedShots are pre-measured launches used by the lookup policies and as the
// safe fallback.
type FixedShots struct {
	Center LaunchVelocity `yaml:"center"`
	Guard  LaunchVelocity `yaml:"guard"`
}

// Calibration is the versioned data set the velocity model is built from.
type Calibration struct {
	Version            string     `yaml:"version"`
	Regimes            []Regime   `yaml:"regimes"`
	DeltaAngleConstant float64    `yaml:"delta_angle_constant"`
	FixedShots         FixedShots `yaml:"fixed_shots"`
}

// DefaultCalibration returns the fitted constants of the FCV1 ice model.
func DefaultCalibration() *Calibration {
	return &Calibration{
		Version: "fcv1-2024.1",
		Regimes: []Regime{
			{
				MaxSpeed: 0.05,
				Coefficients: Coefficients{
					C0: []float64{0.0005048122574925176, 0.2756242531609261},
					C1: [3]float64{0.00046669575066030805, -29.898958358378636, -0.0014030973174948508},
					C2: [2]float64{0.13968687866736632, 0.41120940058777616},
				},
			},
			{
				MaxSpeed: 1.0,
				Coefficients: Coefficients{
					C0: []float64{-0.0014309170115803444, 0.9858457898438147},
					C1: [3]float64{-0.0008339331735471273, -29.86751291726946, -0.19811799977982522},
					C2: [2]float64{0.13967323742978, 0.42816312110477517},
				},
			},
			{
				MaxSpeed: 4.0,
				Coefficients: Coefficients{
					C0: []float64{1.0833113118071224e-06, -0.00012132851917870833, 0.004578093297561233, 0.9767006869364527},
					C1: [3]float64{0.07950648211492622, -8.228225657195706, -0.05601306077702578},
					C2: [2]float64{0.14140440186382008, 0.3875782508767419},
				},
			},
		},
		// Reproduces the measured centre shot: counterclockwise stones curl
		// toward larger bearing on FCV1 ice, so the aim correction is negative.
		DeltaAngleConstant: -2.106,
		FixedShots: FixedShots{
			Center: LaunchVelocity{VX: 0.131725, VY: 2.39969, Spin: CounterClockwise},
			Guard:  LaunchVelocity{VX: 0.127987, VY: 2.33253, Spin: CounterClockwise},
		},
	}
}

// LoadCalibration reads a calibration set from a YAML file.
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration %s: %w", path, err)
	}
	var cal Calibration
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("failed to parse calibration %s: %w", path, err)
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &cal, nil
}

// Validate checks that the regimes are ordered and stay within [0, MaxSpeed].
func (c *Calibration) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("%w: calibration version missing", ErrInvalidInput)
	}
	if len(c.Regimes) == 0 {
		return fmt.Errorf("%w: calibration %s has no regimes", ErrInvalidInput, c.Version)
	}
	prev := 0.0
	for i, r := range c.Regimes {
		if len(r.C0) == 0 {
			return fmt.Errorf("%w: regime %d has no c0 coefficients", ErrInvalidInput, i)
		}
		if r.MaxSpeed < prev || (i > 0 && r.MaxSpeed == prev) {
			return fmt.Errorf("%w: regime %d bound %.3f not above %.3f", ErrInvalidInput, i, r.MaxSpeed, prev)
		}
		prev = r.MaxSpeed
	}
	if prev > MaxSpeed {
		return fmt.Errorf("%w: calibration %s extends to %.2f m/s, limit is %.1f", ErrInvalidInput, c.Version, prev, MaxSpeed)
	}
	return nil
}

// MaxSpeed is the upper bound of the last regime.
func (c *Calibration) MaxSpeed() float64 {
	return c.Regimes[len(c.Regimes)-1].MaxSpeed
}

// regime returns the coefficients covering speed.
func (c *Calibration) regime(speed float64) (Coefficients, bool) {
	for _, r := range c.Regimes {
		if speed <= r.MaxSpeed {
			return r.Coefficients, true
		}
	}
	return Coefficients{}, false
}
