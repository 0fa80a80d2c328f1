package exodus

import (
	"github.com/sirupsen/logrus"
)

func checkStep(step int) error {
	if step < 1 {
		return rangeErrorf("time step %d is before step 1", step)
	}
	return nil
}

// checkWrittenStep checks that step exists and returns its row.
func (f *File) checkWrittenStep(step int) (int64, error) {
	if err := checkStep(step); err != nil {
		return 0, err
	}
	if n := f.c.NumRecords(); int64(step) > n {
		return 0, rangeErrorf("time step %d not in 1..%d", step, n)
	}
	return int64(step - 1), nil
}

// extendTo grows the step axis so that step exists. Every per-step variable
// grows with it; the rows of skipped steps hold 0.
func (f *File) extendTo(step int) error {
	cur := f.c.NumRecords()
	if int64(step) <= cur {
		return nil
	}
	if int64(step) > cur+1 {
		logger.WithFields(logrus.Fields{"from": cur, "to": step}).Info("filling skipped time steps")
	}
	return storageError("extend time steps", f.c.SetNumRecords(int64(step)))
}

// writeStep writes values into the row of step in a per-step variable,
// starting at column.
func (f *File) writeStep(name string, step, column int, values []float64) error {
	if err := f.extendTo(step); err != nil {
		return err
	}
	begin := []int64{int64(step - 1), int64(column)}
	count := []int64{1, int64(len(values))}
	return storageError("write "+name, f.c.WriteSlice(name, begin, count, values))
}

func (f *File) readStep(name string, row int64) ([]float64, error) {
	data, err := f.readRow(name, int(row))
	if err != nil {
		return nil, err
	}
	return data.([]float64), nil
}

// PutTime sets the simulation time of a step, adding the step if needed.
func (f *File) PutTime(step int, t float64) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := checkStep(step); err != nil {
		return err
	}
	if err := f.extendTo(step); err != nil {
		return err
	}
	return f.writeAt(varTimeWhole, step-1, []float64{t})
}

// Time returns the simulation time of a step.
func (f *File) Time(step int) (float64, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	row, err := f.checkWrittenStep(step)
	if err != nil {
		return 0, err
	}
	data, err := f.c.ReadSlice(varTimeWhole, []int64{row}, []int64{1})
	if err != nil {
		return 0, storageError("read "+varTimeWhole, err)
	}
	return data.([]float64)[0], nil
}

// Times returns the simulation time of every step.
func (f *File) Times() ([]float64, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.readFloat64s(varTimeWhole)
}

// NumTimeSteps returns the number of steps. A new file has one.
func (f *File) NumTimeSteps() int {
	return int(f.c.NumRecords())
}
