package cfg

// ZStepPerPass is the nominal depth removed per spiral pass, in mm. The actual
// step is recomputed per hole so that the passes divide the total depth
// exactly; this value only controls how many passes that works out to.
var ZStepPerPass = 0.5

// SegmentsPerCircle is the number of line segments used to approximate a full
// circle when arc moves are disabled. 36 gives 10° chords, which is well under
// typical machine resolution for the hole sizes involved.
var SegmentsPerCircle = 36

// ReturnToCenterRatio controls the post-mill retract. After the final pass the
// tool returns to the hole center before retracting only when
// holeDiameter <= ReturnToCenterRatio * bitDiameter: with a thin remaining web
// the move is safe, while in a larger hole it would drag the bit across uncut
// material. The 2x threshold is inherited behavior, not a measured limit.
var ReturnToCenterRatio = 2.0

// DuplicateHoleTolerance is the maximum XY distance in mm between two hole
// centers for them to be treated as the same hole and deduplicated.
var DuplicateHoleTolerance = 0.01

// ArcChordTolerance is the maximum chord deviation in mm when flattening
// outline arcs to line segments.
var ArcChordTolerance = 0.02

// SpindleDwellSeconds is how long the program header waits for the spindle to
// reach speed before the first move.
var SpindleDwellSeconds = 2.0
