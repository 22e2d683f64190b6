// Package encoding provides the columnar code encoders used to persist key
// tables and packed key grids.
//
// Two column layouts are provided:
//
//   - CodeRawEncoder/Decoder: fixed 8 bytes per code in the configured byte
//     order; supports random access. Used for packed key grids.
//   - CodeDeltaEncoder/Decoder: ascending codes stored as the first value
//     followed by uvarint gaps. Used for the raw column of key tables, which is
//     strictly ascending by construction; dense codes are implicit (the index).
//
// Fire-year raw codes are sparse but clustered (most cells burn once or twice),
// so the gaps between consecutive distinct codes are usually far smaller than
// the codes themselves:
//
//	encoder := encoding.NewCodeDeltaEncoder()
//	defer encoder.Finish()
//	if err := encoder.WriteSlice(table.RawCodes()); err != nil {
//	    return err
//	}
//	payload := encoder.Bytes()
package encoding
