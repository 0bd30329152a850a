/*
Command nicerbgml2 estimates the background spectrum of a NICER observation
with a second generation machine learning model.

Usage

  nicerbgml2 [options] <obsID> <kpDir>    estimate the background
  nicerbgml2 -h                           display help and quick reference
  nicerbgml2 -v                           display version and copyright

Options are those of nicerbgml.

Differences from nicerbgml

The observation is first reprocessed with nicerl2, run from the directory
containing the observation directory.  Detector selection and the minimum
number of active detectors come from the model's mpuFilter.  Geomagnetic
indices KP and SOLAR_PHI are taken from kpDir and added to the MKF file.
A failure of reprocessing stops the program.

HEASoft must be initialized; the program checks that HEADAS is set before
running anything.

Features are selected from the binned MKF table by the column names of the
model, not by position.

Weights in the mathpha expression are given to six significant digits.

Version 0.2.t4n20

See the nicerbgml documentation for file locations, formats, and the
algorithm.

-------------
Public domain.
*/
package main
